package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	DatabaseDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"furnistore.db"`

	Razorpay Razorpay `envPrefix:"RAZORPAY_"`
	COD      COD      `envPrefix:"COD_"`
	Admin    Admin    `envPrefix:"ADMIN_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Kafka    Kafka    `envPrefix:"KAFKA_"`
}

type Razorpay struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://api.razorpay.com"`
	KeyID         string `env:"KEY_ID"`
	KeySecret     string `env:"KEY_SECRET"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

// COD holds the two-tier advance fee collected online for cash-on-delivery
// orders: FeeBelow under the subtotal Threshold, FeeAbove at or over it.
type COD struct {
	Threshold float64 `env:"THRESHOLD" envDefault:"5000"`
	FeeBelow  float64 `env:"FEE_BELOW" envDefault:"149"`
	FeeAbove  float64 `env:"FEE_ABOVE" envDefault:"299"`
}

type Admin struct {
	Token string `env:"TOKEN"`
}

type Redis struct {
	Addr       string `env:"ADDR"` // empty disables the catalog cache
	Password   string `env:"PASSWORD"`
	DB         int    `env:"DB" envDefault:"0"`
	TTLSeconds int    `env:"TTL_SECONDS" envDefault:"300"`
}

type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","` // empty disables event publishing
	Topic   string   `env:"TOPIC" envDefault:"furnistore.orders"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
