package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"` // postgres only
	} `yaml:"database"`

	Auth struct {
		JWTSecret     string `yaml:"jwtSecret"`
		TokenTTLHours int    `yaml:"tokenTTLHours"`
		BcryptCost    int    `yaml:"bcryptCost"`
	} `yaml:"auth"`

	Limits struct {
		MinCodeDuration int `yaml:"minCodeDuration"` // minutes
		MaxCodeDuration int `yaml:"maxCodeDuration"` // minutes
		RateCapacity    int `yaml:"rateCapacity"`    // burst size per IP
		RateRefill      int `yaml:"rateRefill"`      // tokens per second
	} `yaml:"limits"`

	Sweep struct {
		IntervalHours int `yaml:"intervalHours"`
	} `yaml:"sweep"`

	Logs struct {
		Dir string `yaml:"dir"`
	} `yaml:"logs"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 12
	}
	if c.Limits.RateCapacity == 0 {
		c.Limits.RateCapacity = 60
	}
	if c.Limits.RateRefill == 0 {
		c.Limits.RateRefill = 2
	}
	if c.Sweep.IntervalHours == 0 {
		c.Sweep.IntervalHours = 24
	}
	if c.Logs.Dir == "" {
		c.Logs.Dir = "logs"
	}
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
