package app

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"

	"github.com/spf13/pflag"

	"github.com/vidgate/vidgate/pkg/logging"
)

const (
	defaultTokenTTLS   = 14400 // 4h session tokens
	defaultSegmentTTLS = 14400 // 4h segment capabilities
	defaultProbeTimeS  = 2
)

type ServerConfig struct {
	LogFormat     string `json:"logformat"`
	LogLevel      string `json:"loglevel"`
	Port          int    `json:"port"`
	TimeoutS      int    `json:"timeoutS"`
	VideoRoot     string `json:"videoroot"`
	DBPath        string `json:"dbpath"`
	Secret        string `json:"secret"`
	Domains       string `json:"domains"` // comma-separated referer allow-list
	Origins       string `json:"origins"` // comma-separated CORS origin allow-list
	PublicURL     string `json:"publicurl"`
	TokenTTLS     int    `json:"tokenttlS"`
	SegmentTTLS   int    `json:"segmentttlS"`
	ProbeTimeoutS int    `json:"probetimeoutS"`
	MaxRequests   int    `json:"maxrequests"` // per IP and interval on streaming routes, 0 disables
	ReqLimitIntS  int    `json:"reqlimitintS"`
	CertPath      string `json:"certpath"`
	KeyPath       string `json:"keypath"`
	TLSDomains    string `json:"tlsdomains"` // automatic HTTPS via certmagic
}

var DefaultConfig = ServerConfig{
	LogFormat:     "pretty",
	LogLevel:      "INFO",
	Port:          8989,
	TimeoutS:      60,
	VideoRoot:     "./videos",
	DBPath:        "./vidgate.db",
	TokenTTLS:     defaultTokenTTLS,
	SegmentTTLS:   defaultSegmentTTLS,
	ProbeTimeoutS: defaultProbeTimeS,
	ReqLimitIntS:  60,
}

// LoadConfig loads defaults, config file, command line, and finally applies
// environment variables (VIDGATE_ prefix).
//
// VideoRoot is made absolute relative to cwd if needed.
func LoadConfig(args []string, cwd string) (*ServerConfig, error) {
	// First set default values
	k := koanf.New(".")
	defaults := DefaultConfig
	k.Load(structs.Provider(defaults, "json"), nil)

	f := pflag.NewFlagSet("vidgate", pflag.ContinueOnError)
	f.Usage = func() {
		parts := strings.Split(args[0], "/")
		name := parts[len(parts)-1]
		fmt.Fprintf(os.Stderr, "Run as %s [options]:\n", name)
		f.PrintDefaults()
	}
	cfgFile := f.String("cfg", "", "path to a JSON config file")
	f.Int("port", k.Int("port"), "HTTP port")
	lf := strings.Join(logging.LogFormats, ", ")
	f.String("logformat", k.String("logformat"), fmt.Sprintf("log format [%s]", lf))
	ll := strings.Join(logging.LogLevels, ", ")
	f.String("loglevel", k.String("loglevel"), fmt.Sprintf("log level [%s]", ll))
	f.String("videoroot", k.String("videoroot"), "root directory with encoded video artifacts")
	f.String("dbpath", k.String("dbpath"), "path to the platform SQLite database")
	f.String("secret", k.String("secret"), "streaming secret for tokens and signatures")
	f.String("domains", k.String("domains"), "comma-separated referer allow-list (empty disables the check)")
	f.String("origins", k.String("origins"), "comma-separated CORS origin allow-list")
	f.String("publicurl", k.String("publicurl"), "external base URL if behind a proxy")
	f.Int("tokenttl", k.Int("tokenttlS"), "session token validity (seconds)")
	f.Int("segmentttl", k.Int("segmentttlS"), "segment capability validity (seconds)")
	f.Int("maxrequests", k.Int("maxrequests"), "max streaming requests per IP and interval (0 disables)")
	f.Int("timeout", k.Int("timeoutS"), "timeout for all requests (seconds)")
	f.String("certpath", k.String("certpath"), "path to TLS certificate")
	f.String("keypath", k.String("keypath"), "path to TLS private key")
	f.String("tlsdomains", k.String("tlsdomains"), "comma-separated domains for automatic HTTPS")
	if err := f.Parse(args[1:]); err != nil {
		return nil, fmt.Errorf("command line parse: %w", err)
	}

	// Load the config file provided on the command line.
	if *cfgFile != "" {
		cf := file.Provider(*cfgFile)
		if err := k.Load(cf, json.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// Possibly override config file with command line parameters
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("parsing cli: %v", err)
	}

	// Overload with environment variables
	k.Load(env.Provider("VIDGATE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "VIDGATE_")), "_", ".", -1)
	}), nil)

	// Make videoroot absolute in case it is not already
	videoRoot := k.String("videoroot")
	if videoRoot != "" && !path.IsAbs(videoRoot) {
		videoRoot = path.Join(cwd, videoRoot)
		k.Load(confmap.Provider(map[string]any{
			"videoroot": videoRoot,
		}, "."), nil)
	}

	var cfg ServerConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if cfg.Secret == "" {
		return nil, fmt.Errorf("no streaming secret configured (--secret or VIDGATE_SECRET)")
	}

	return &cfg, nil
}

// DomainList returns the normalized referer allow-list.
func (c *ServerConfig) DomainList() []string {
	return splitTrimLower(c.Domains)
}

// OriginList returns the normalized CORS origin allow-list.
func (c *ServerConfig) OriginList() []string {
	return splitTrimLower(c.Origins)
}

func splitTrimLower(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
