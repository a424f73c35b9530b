package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
	_ "github.com/xaionaro-go/speechenhance/pkg/enhancer/implementations/onnx"
	_ "github.com/xaionaro-go/speechenhance/pkg/enhancer/implementations/rnnoise"
	_ "github.com/xaionaro-go/speechenhance/pkg/enhancer/implementations/spectralgate"
	"github.com/xaionaro-go/speechenhance/pkg/pipeline"
)

func main() {
	cfg := pipeline.DefaultConfig()

	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "", "path to a YAML config file; flags override its values")
	inputPath := pflag.String("input", cfg.InputPath, "the audio file to enhance (mp3, wav, flac, ogg)")
	outputPath := pflag.String("output", cfg.OutputPath, "where to write the enhanced 24-bit WAV file")
	model := pflag.String("model", string(cfg.Model), fmt.Sprintf("the enhancement model, one of %v ('%s' needs a build with '-tags onnxruntime', '%s' always works)", enhancer.List(), enhancer.ModelDNS64, enhancer.ModelSpectralGate))
	weightsPath := pflag.String("model-path", "", "path to the model weights file")
	weightsURL := pflag.String("model-url", "", "where to download the model weights from if they are not cached")
	cacheDir := pflag.String("model-cache-dir", "", "the directory to cache model weights in")
	runtimeLib := pflag.String("onnxruntime-lib", "", "path to the onnxruntime shared library")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	if *configPath != "" {
		assertNoError(pipeline.LoadConfigFile(*configPath, &cfg))
	}

	overrides := map[string]func(){
		"input":           func() { cfg.InputPath = *inputPath },
		"output":          func() { cfg.OutputPath = *outputPath },
		"model":           func() { cfg.Model = enhancer.ModelID(*model) },
		"model-path":      func() { cfg.WeightsPath = *weightsPath },
		"model-url":       func() { cfg.WeightsURL = *weightsURL },
		"model-cache-dir": func() { cfg.CacheDir = *cacheDir },
		"onnxruntime-lib": func() { cfg.RuntimeLibraryPath = *runtimeLib },
	}
	for name, apply := range overrides {
		if pflag.CommandLine.Changed(name) {
			apply()
		}
	}
	logger.Debugf(ctx, "config: %#+v", cfg)

	_, err := pipeline.New(cfg, nil).Run(ctx)
	assertNoError(err)
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
