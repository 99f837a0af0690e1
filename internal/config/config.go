package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	SessionSecret       string
	FrontendURLEndsWith string
	AllowCrossSiteDev   bool

	// AdminAccount is bootstrapped with the administrator role on every
	// ledger at startup.
	AdminAccount string
	// MarketOperator is the account the trade engine acts as; sellers must
	// approve it before listing.
	MarketOperator string
	// BridgeOperator is the account the conversion bridge acts as; it must
	// hold the bridge operator role on both asset ledgers.
	BridgeOperator string
	// EventChannel is the Redis pub/sub channel for the market event feed.
	EventChannel string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		AdminAccount:        withDefault(viper.GetString("ADMIN_ACCOUNT"), "admin"),
		MarketOperator:      withDefault(viper.GetString("MARKET_OPERATOR_ACCOUNT"), "market"),
		BridgeOperator:      withDefault(viper.GetString("BRIDGE_OPERATOR_ACCOUNT"), "bridge"),
		EventChannel:        withDefault(viper.GetString("EVENT_CHANNEL"), "verdant:events"),
	}, nil
}

func withDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}
