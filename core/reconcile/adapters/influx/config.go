package influx

// Config holds the InfluxDB connection settings.
type Config struct {
	// URL is the InfluxDB server URL.
	URL string `mapstructure:"url" default:"http://localhost:8086"`
	// Token is the API token.
	Token string `mapstructure:"token" default:""`
	// Org is the organisation name.
	Org string `mapstructure:"org" default:"point-record"`
	// Bucket holds the points.
	Bucket string `mapstructure:"bucket" default:"points"`
	// Measurement is the measurement name of the points.
	Measurement string `mapstructure:"measurement" default:"point"`
	// ReadOnly makes the adapter read-only by implementation.
	ReadOnly bool `mapstructure:"read_only" default:"false"`
}

func (c Config) registry() string {
	return c.Measurement + "_series"
}
