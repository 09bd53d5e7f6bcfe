package main

import (
	"strings"

	"aircheck/internal/config"
)

// commandContext carries the flag values and lazily resolved configuration
// shared by all subcommands.
type commandContext struct {
	addrFlag   *string
	configFlag *string

	cfg *config.Config
}

func newCommandContext(addrFlag, configFlag *string) *commandContext {
	return &commandContext{addrFlag: addrFlag, configFlag: configFlag}
}

// ensureConfig loads the configuration once. Missing config files are fine;
// defaults apply.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// apiAddr resolves the daemon address: the --addr flag wins, then the
// configured bind address.
func (c *commandContext) apiAddr() (string, error) {
	if c.addrFlag != nil {
		if addr := strings.TrimSpace(*c.addrFlag); addr != "" {
			return addr, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.APIBind, nil
}

// client builds an API client for the resolved address.
func (c *commandContext) client() (*apiClient, error) {
	addr, err := c.apiAddr()
	if err != nil {
		return nil, err
	}
	return newAPIClient(addr), nil
}
