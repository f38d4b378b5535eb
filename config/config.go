package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		// .env is optional, real environment variables win
		_ = godotenv.Load()

		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("alpha_vantage_api_key", "ALPHA_VANTAGE_API_KEY")
		viper.BindEnv("api_pro_key", "API_PRO_KEY")
		viper.BindEnv("crypto_provider", "CRYPTO_PROVIDER")
		viper.BindEnv("forex_api_url", "FOREX_API_URL")
		viper.BindEnv("crypto_api_url", "CRYPTO_API_URL")
		viper.BindEnv("alert_interval", "ALERT_INTERVAL")
		viper.BindEnv("alert_quote_currency", "ALERT_QUOTE_CURRENCY")
		viper.BindEnv("price_fetch_timeout", "PRICE_FETCH_TIMEOUT")
		viper.BindEnv("price_fetch_concurrency", "PRICE_FETCH_CONCURRENCY")
		viper.BindEnv("price_fetch_retries", "PRICE_FETCH_RETRIES")
		viper.BindEnv("render_images", "RENDER_IMAGES")
		viper.BindEnv("db_path", "DB_PATH")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("crypto_provider", "coingecko")
		viper.SetDefault("forex_api_url", "https://www.alphavantage.co")
		viper.SetDefault("crypto_api_url", "https://api.coingecko.com/api/v3")
		viper.SetDefault("alert_interval", 10*time.Second)
		viper.SetDefault("alert_quote_currency", "usd")
		viper.SetDefault("price_fetch_timeout", 5*time.Second)
		viper.SetDefault("price_fetch_concurrency", 4)
		viper.SetDefault("price_fetch_retries", 0)
		viper.SetDefault("render_images", true)
		viper.SetDefault("db_path", "/app/data/bot.db")
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
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

func GetDuration(key string) time.Duration {
	InitConfig()
	return viper.GetDuration(key)
}
