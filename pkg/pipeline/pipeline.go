// Package pipeline glues the loader, the resampler, the enhancement model
// and the writer into the single file-to-file run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
	"github.com/xaionaro-go/speechenhance/pkg/audio/decoder"
	"github.com/xaionaro-go/speechenhance/pkg/audio/encoder"
	"github.com/xaionaro-go/speechenhance/pkg/audio/resampler"
	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
)

var ErrLengthMismatch = errors.New("the model returned a different amount of samples")

const bannerWidth = 60

type Pipeline struct {
	Config Config

	// Enhancer is the model to use. If nil, the model Config.Model is
	// loaded after the input file was read successfully.
	Enhancer enhancer.Enhancer
}

func New(cfg Config, e enhancer.Enhancer) *Pipeline {
	return &Pipeline{
		Config:   cfg,
		Enhancer: e,
	}
}

type Report struct {
	InputFrames     int
	OutputFrames    int
	SampleRate      audio.SampleRate
	ModelSampleRate audio.SampleRate
	Resampled       bool

	InputPeak     float64
	InputRMSDBFS  float64
	OutputPeak    float64
	OutputRMSDBFS float64

	OutputPath string
	OutputSize int64
	Elapsed    time.Duration
}

func (r *Report) OutputSizeMB() float64 {
	return encoder.Result{Size: r.OutputSize}.SizeMB()
}

// Run executes load → resample → enhance → resample back → write.
// Nothing is written if any of the steps before writing fails.
func (p *Pipeline) Run(ctx context.Context) (_ret *Report, _err error) {
	logger.Tracef(ctx, "Run")
	defer func() { logger.Tracef(ctx, "/Run: %v", _err) }()

	startTS := time.Now()
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	banner(ctx, fmt.Sprintf("SPEECH ENHANCEMENT (%s)", p.modelName()))

	logger.Infof(ctx, "Loading audio...")
	wf, err := decoder.Load(ctx, cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("unable to load the input audio: %w", err)
	}
	nativeRate := wf.SampleRate

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := p.Enhancer
	if model == nil {
		logger.Infof(ctx, "Loading pretrained %s model...", cfg.Model)
		model, err = enhancer.New(ctx, cfg.Model, cfg.EnhancerOptions())
		if err != nil {
			return nil, fmt.Errorf("unable to load the model: %w", err)
		}
		defer func() {
			if err := model.Close(); err != nil {
				logger.Errorf(ctx, "unable to close the model: %v", err)
			}
		}()
	}

	modelRate, err := audio.SampleRateOf(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("unable to get the sample rate of the model: %w", err)
	}
	modelChannels, err := model.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get the amount of channels of the model: %w", err)
	}
	if modelChannels != 1 {
		return nil, fmt.Errorf("the model expects %d channels, but only mono is supported", modelChannels)
	}

	report := &Report{
		InputFrames:     wf.Frames(),
		SampleRate:      nativeRate,
		ModelSampleRate: modelRate,
		Resampled:       nativeRate != modelRate,
	}

	samples := wf.Samples
	if report.Resampled {
		logger.Infof(ctx, "Resampling %d Hz → %d Hz for model", nativeRate, modelRate)
		samples, err = resampler.Resample(ctx, samples, nativeRate, modelRate)
		if err != nil {
			return nil, fmt.Errorf("unable to resample to the model sample rate: %w", err)
		}
	}
	report.InputPeak = audio.Peak(samples)
	report.InputRMSDBFS = audio.DBFS(audio.RMS(samples))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	banner(ctx, "Running neural denoising...")
	enhanced, err := runInference(ctx, model, samples)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if report.Resampled {
		logger.Infof(ctx, "Resampling back %d Hz → %d Hz", modelRate, nativeRate)
		enhanced, err = resampler.Resample(ctx, enhanced, modelRate, nativeRate)
		if err != nil {
			return nil, fmt.Errorf("unable to resample back to %d Hz: %w", nativeRate, err)
		}
	}
	output := audio.NewMonoWaveform(enhanced, nativeRate)
	report.OutputFrames = output.Frames()
	report.OutputPeak = output.Peak()
	report.OutputRMSDBFS = audio.DBFS(output.RMS())

	logger.Infof(ctx, "Input  peak: %.4f, RMS: %.1f dBFS", report.InputPeak, report.InputRMSDBFS)
	logger.Infof(ctx, "Output peak: %.4f, RMS: %.1f dBFS", report.OutputPeak, report.OutputRMSDBFS)

	result, err := encoder.WriteWAV(ctx, cfg.OutputPath, output, encoder.DefaultBitDepth)
	if err != nil {
		return nil, fmt.Errorf("unable to save the result: %w", err)
	}
	report.OutputPath = result.Path
	report.OutputSize = result.Size
	report.Elapsed = time.Since(startTS)

	banner(ctx, fmt.Sprintf("DONE in %.1fs", report.Elapsed.Seconds()))
	logger.Infof(ctx, "Output: %s", report.OutputPath)
	logger.Infof(ctx, "Size: %.1f MB", report.OutputSizeMB())
	return report, nil
}

func (p *Pipeline) modelName() string {
	if p.Enhancer != nil && p.Config.Model == "" {
		return fmt.Sprintf("%T", p.Enhancer)
	}
	return string(p.Config.Model)
}

// runInference feeds the whole waveform to the model as a single batch
// item and checks the model kept the length.
func runInference(
	ctx context.Context,
	model enhancer.Enhancer,
	samples []float32,
) (_ret []float32, _err error) {
	logger.Debugf(ctx, "runInference: %d samples", len(samples))
	defer func() { logger.Debugf(ctx, "/runInference: %d samples, %v", len(_ret), _err) }()

	enhanced, err := model.Enhance(ctx, samples)
	if err != nil {
		return nil, fmt.Errorf("unable to run the model: %w", err)
	}
	if len(enhanced) != len(samples) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(enhanced), len(samples))
	}
	return enhanced, nil
}

func banner(ctx context.Context, title string) {
	line := strings.Repeat("=", bannerWidth)
	logger.Infof(ctx, "%s", line)
	logger.Infof(ctx, "%s", title)
	logger.Infof(ctx, "%s", line)
}
