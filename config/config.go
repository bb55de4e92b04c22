package config

import (
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
	"sync"
	"time"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Warnf("Could not load .env file: %v", err)
		}

		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("api_pro_key", "API_PRO_KEY")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")
		viper.BindEnv("locales_dir", "LOCALES_DIR")
		viper.BindEnv("price_source", "PRICE_SOURCE")
		viper.BindEnv("coingecko_url", "COINGECKO_URL")
		viper.BindEnv("alert_check_interval", "ALERT_CHECK_INTERVAL")
		viper.BindEnv("alert_first_delay", "ALERT_FIRST_DELAY")
		viper.BindEnv("price_lookup_timeout", "PRICE_LOOKUP_TIMEOUT")
		viper.BindEnv("notify_timeout", "NOTIFY_TIMEOUT")
		viper.BindEnv("max_alerts_per_user", "MAX_ALERTS_PER_USER")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
		viper.SetDefault("locales_dir", "locales")
		viper.SetDefault("price_source", "coinpaprika")
		viper.SetDefault("coingecko_url", "https://api.coingecko.com/api/v3")
		viper.SetDefault("alert_check_interval", time.Minute)
		viper.SetDefault("alert_first_delay", 10*time.Second)
		viper.SetDefault("price_lookup_timeout", 15*time.Second)
		viper.SetDefault("notify_timeout", 10*time.Second)
		viper.SetDefault("max_alerts_per_user", 10)
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

// GetDuration accepts Go duration strings such as "90s" or "2m"
func GetDuration(key string) time.Duration {
	InitConfig()
	return viper.GetDuration(key)
}
