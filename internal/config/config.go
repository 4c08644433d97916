package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddress string `mapstructure:"listen_address"`
	OrganizerKey  string `mapstructure:"organizer_key"`

	HoldDuration  time.Duration `mapstructure:"hold_duration"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	PaymentGatewayHost string `mapstructure:"payment_gateway_host"`
	PaymentGatewayKey  string `mapstructure:"payment_gateway_key"`

	PostgresDSN string `mapstructure:"postgres_dsn"`
}

func New() *Config {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		logrus.Fatalf("unmarshalling config: %v", err)
	}
	return cfg
}

func SetupCommon() {
	viper.SetDefault("listen_address", ":8080")
	viper.SetDefault("hold_duration", "72h")
	viper.SetDefault("sweep_interval", "1m")
	viper.SetEnvPrefix("MUNHUB")

	viper.MustBindEnv("postgres_dsn")
	viper.MustBindEnv("organizer_key")
	viper.AutomaticEnv()
}
