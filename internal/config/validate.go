package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if c.Store.RetentionDays < 0 {
		return errors.New("store.retention_days must not be negative")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		return errors.New("paths.catalog_path must be set")
	}
	if strings.TrimSpace(c.Paths.RecordingsDir) == "" {
		return errors.New("paths.recordings_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.GraceSeconds <= 0 {
		return errors.New("capture.grace_seconds must be positive")
	}
	if c.Capture.MaxConcurrent <= 0 {
		return errors.New("capture.max_concurrent must be positive")
	}
	if c.Capture.BatchDelaySeconds < 0 {
		return errors.New("capture.batch_delay_seconds must not be negative")
	}
	if strings.TrimSpace(c.Capture.AudioCodec) == "" {
		return errors.New("capture.audio_codec must be set")
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if c.Monitor.CycleSeconds <= 0 {
		return errors.New("monitor.cycle_seconds must be positive")
	}
	if c.Monitor.ProbeTimeoutSeconds <= 0 {
		return errors.New("monitor.probe_timeout_seconds must be positive")
	}
	if c.Monitor.CountryGroups <= 0 || c.Monitor.StationsPerGroup <= 0 {
		return errors.New("monitor.country_groups and monitor.stations_per_group must be positive")
	}
	if c.Monitor.TestProbeWorkers <= 0 {
		return errors.New("monitor.test_probe_workers must be positive")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.TickSeconds <= 0 {
		return errors.New("scheduler.tick_seconds must be positive")
	}
	if c.Scheduler.MinIntervalMinutes < 1 {
		return fmt.Errorf("scheduler.min_interval_minutes must be at least 1, got %d", c.Scheduler.MinIntervalMinutes)
	}
	return nil
}
