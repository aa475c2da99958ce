package verifier

// Config holds configuration for signed transaction verification.
type Config struct {
	// Algorithm is the accepted signing algorithm (HS256 or ES256).
	Algorithm string `mapstructure:"algorithm" default:"HS256"`
	// Secret is the shared HMAC secret used with HS256.
	Secret string `mapstructure:"secret" default:""`
	// PublicKey is the PEM encoded ECDSA public key used with ES256.
	PublicKey string `mapstructure:"public_key" default:""`
	// Issuer, when set, must match the iss claim of every transaction.
	Issuer string `mapstructure:"issuer" default:""`
}
