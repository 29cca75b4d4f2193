package config

import "testing"

func validConfig() *Config {
	return &Config{
		HTTPPort:         8000,
		MetricsPort:      8080,
		RedisHost:        "localhost",
		RedisPort:        "6379",
		EngineConfigPath: "config/engine.yaml",
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	c := validConfig()
	c.HTTPPort = 0
	if err := c.Validate(); err == nil {
		t.Error("zero HTTP port should be rejected")
	}

	c = validConfig()
	c.MetricsPort = c.HTTPPort
	if err := c.Validate(); err == nil {
		t.Error("colliding ports should be rejected")
	}

	c = validConfig()
	c.EngineConfigPath = ""
	if err := c.Validate(); err == nil {
		t.Error("empty engine config path should be rejected")
	}
}

func TestRedisAddr(t *testing.T) {
	if got := validConfig().RedisAddr(); got != "localhost:6379" {
		t.Errorf("RedisAddr() = %s", got)
	}
}
