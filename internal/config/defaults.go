package config

import "runtime"

const (
	defaultConfigPath             = "~/.config/vidscribe/config.toml"
	defaultOutputDir              = "~/vidscribe"
	defaultLogDir                 = "~/.local/share/vidscribe/logs"
	defaultStateDir               = "~/.local/share/vidscribe"
	defaultStoreFile              = "runs.db"
	defaultStorePath              = defaultStateDir + "/" + defaultStoreFile
	defaultSceneChangeThreshold   = 0.70
	defaultMinGapSeconds          = 5
	defaultCodeScoreThreshold     = 0.5
	defaultDiagramScoreThreshold  = 0.5
	defaultAlignmentWindowSeconds = 30
	defaultSampleFPS              = 2
	defaultBaseline               = "examined"
	defaultDurationSource         = "last_frame"
	defaultOCRBinary              = "tesseract"
	defaultOCRLanguage            = "eng"
	defaultOCRMaxConcurrent       = 2
	defaultOCRTimeoutSeconds      = 30
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultJPEGQuality            = 85
	defaultFrameScale             = 1.0
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Analysis: Analysis{
			SceneChangeThreshold:   defaultSceneChangeThreshold,
			MinGapSeconds:          defaultMinGapSeconds,
			CodeScoreThreshold:     defaultCodeScoreThreshold,
			DiagramScoreThreshold:  defaultDiagramScoreThreshold,
			AlignmentWindowSeconds: defaultAlignmentWindowSeconds,
			SampleFPS:              defaultSampleFPS,
			Baseline:               defaultBaseline,
			DurationSource:         defaultDurationSource,
			Workers:                runtime.NumCPU(),
		},
		OCR: OCR{
			Binary:         defaultOCRBinary,
			Language:       defaultOCRLanguage,
			MaxConcurrent:  defaultOCRMaxConcurrent,
			TimeoutSeconds: defaultOCRTimeoutSeconds,
		},
		Frames: Frames{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			JPEGQuality:   defaultJPEGQuality,
			Scale:         defaultFrameScale,
		},
		Store: Store{
			Path: defaultStorePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
