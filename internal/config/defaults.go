package config

const (
	defaultCatalogPath      = "~/.local/share/aircheck/stations.json"
	defaultRecordingsDir    = "~/recordings"
	defaultLogDir           = "~/.local/share/aircheck/logs"
	defaultAPIBind          = "127.0.0.1:7512"
	defaultAudioCodec       = "mp3"
	defaultAudioBitrate     = "128k"
	defaultGraceSeconds     = 30
	defaultMaxConcurrent    = 5
	defaultBatchDelay       = 2
	defaultCycleSeconds     = 300
	defaultProbeTimeout     = 8
	defaultProbeDelay       = 1
	defaultCountryGroups    = 10
	defaultStationsPerGroup = 2
	defaultBackoffSeconds   = 60
	defaultTestProbeTimeout = 5
	defaultTestProbeWorkers = 10
	defaultTickSeconds      = 60
	defaultMinInterval      = 1
	defaultRetentionDays    = 60
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CatalogPath:   defaultCatalogPath,
			RecordingsDir: defaultRecordingsDir,
			LogDir:        defaultLogDir,
			APIBind:       defaultAPIBind,
		},
		Capture: Capture{
			AudioCodec:        defaultAudioCodec,
			AudioBitrate:      defaultAudioBitrate,
			GraceSeconds:      defaultGraceSeconds,
			MaxConcurrent:     defaultMaxConcurrent,
			BatchDelaySeconds: defaultBatchDelay,
		},
		Monitor: Monitor{
			CycleSeconds:        defaultCycleSeconds,
			ProbeTimeoutSeconds: defaultProbeTimeout,
			ProbeDelaySeconds:   defaultProbeDelay,
			CountryGroups:       defaultCountryGroups,
			StationsPerGroup:    defaultStationsPerGroup,
			BackoffSeconds:      defaultBackoffSeconds,
			TestProbeTimeout:    defaultTestProbeTimeout,
			TestProbeWorkers:    defaultTestProbeWorkers,
		},
		Scheduler: Scheduler{
			TickSeconds:        defaultTickSeconds,
			MinIntervalMinutes: defaultMinInterval,
		},
		Store: Store{
			RetentionDays: defaultRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
