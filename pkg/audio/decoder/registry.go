package decoder

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

type decoderWithPriority struct {
	Priority int
	Decoder
}

var decoderRegistry = map[reflect.Type]decoderWithPriority{}

// Register adds a decoder. Decoders with a higher priority are tried first
// when the file extension does not point to a specific decoder.
func Register(
	priority int,
	decoder Decoder,
) {
	t := reflect.ValueOf(decoder).Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if _, ok := decoderRegistry[t]; ok {
		panic(fmt.Errorf("there is already registered a decoder of type %v", t))
	}
	decoderRegistry[t] = decoderWithPriority{
		Priority: priority,
		Decoder:  decoder,
	}
}

// Decoders returns all registered decoders sorted by priority.
func Decoders() []Decoder {
	var decodersWithPriorities []decoderWithPriority
	for _, decoder := range decoderRegistry {
		decodersWithPriorities = append(decodersWithPriorities, decoder)
	}
	sort.Slice(decodersWithPriorities, func(i, j int) bool {
		if decodersWithPriorities[i].Priority != decodersWithPriorities[j].Priority {
			return decodersWithPriorities[i].Priority > decodersWithPriorities[j].Priority
		}
		return decodersWithPriorities[i].Name() < decodersWithPriorities[j].Name()
	})

	var decoders []Decoder
	for _, decoder := range decodersWithPriorities {
		decoders = append(decoders, decoder.Decoder)
	}

	return decoders
}

// candidates returns the decoders to try for a file with the given
// extension: the ones claiming the extension first, then the rest.
func candidates(ext string) []Decoder {
	ext = strings.ToLower(ext)
	var preferred, rest []Decoder
	for _, decoder := range Decoders() {
		if claimsExtension(decoder, ext) {
			preferred = append(preferred, decoder)
		} else {
			rest = append(rest, decoder)
		}
	}
	return append(preferred, rest...)
}

func claimsExtension(decoder Decoder, ext string) bool {
	for _, e := range decoder.Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}
