package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/logging"
	"github.com/maxvaer/dirprobe/internal/reqparse"
	"github.com/maxvaer/dirprobe/internal/runner"
	"github.com/maxvaer/dirprobe/pkg/version"
)

// Exit codes.
const (
	exitError     = 1
	exitInterrupt = 130
)

var (
	opts        = config.Defaults()
	headerArgs  []string
	cookieArg   string
	timeoutSecs float64
	syncLogs    = func() {}
)

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"url", "wordlist", "request-file", "method", "add-slash"}},
	{"MATCHERS", []string{"status-code", "extensions"}},
	{"FILTERS", []string{"exclude-status", "exclude-size"}},
	{"RATE-LIMIT", []string{"threads", "timeout"}},
	{"HTTP", []string{"headers", "cookies", "useragent", "proxy", "follow-redirect", "no-tls-validation"}},
	{"OUTPUT", []string{"expanded", "no-status", "no-color", "progress", "interactive", "verbose"}},
	{"CONFIGURATION", []string{"config"}},
}

var rootCmd = &cobra.Command{
	Use:     "dirprobe -u <url> -w <wordlist> [flags]",
	Short:   "Concurrent web directory and file prober",
	Version: version.Version,
	Long: `dirprobe requests {url}/{word} for every word of a wordlist with a bounded
number of concurrent requests and reports status, content length and
Content-Type extension matches for each answer.`,
	Example: `  dirprobe -u https://example.com -w words.txt
  dirprobe -u https://example.com -w words.txt -sc 200 -x php,html
  dirprobe -u example.com -w words.txt -f -r -e -t 50
  dirprobe -u https://example.com -w words.txt -H "Authorization: Bearer x" -c "sid=1"
  cat words.txt | dirprobe -u https://example.com -w -
  dirprobe --request-file burp.req -w words.txt`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepare(cmd.Flags())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.Run(ctx, &opts)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	// Target
	f.StringVarP(&opts.URL, "url", "u", "", "Base URL to probe")
	f.StringVarP(&opts.WordlistPath, "wordlist", "w", "", "Newline-delimited wordlist (- for stdin)")
	f.StringVar(&opts.RequestFile, "request-file", "", "Raw HTTP request file (e.g. Burp Suite export)")
	f.StringVarP(&opts.Method, "method", "m", config.DefaultMethod, "HTTP method")
	f.BoolVarP(&opts.AddSlash, "add-slash", "f", false, "Append / to every URL")

	// Matching
	f.IntVar(&opts.StatusCode, "status-code", 0, "Only show responses with this status code (also -sc)")
	f.StringVarP(&opts.Extensions, "extensions", "x", "", "Comma-separated suffixes matched against Content-Type")
	f.Var(&intSliceValue{target: &opts.ExcludeStatus}, "exclude-status", "Hide responses with these status codes (comma-separated)")
	f.Var(&intSliceValue{target: &opts.ExcludeSize}, "exclude-size", "Hide responses of these sizes (comma-separated)")

	// Performance
	f.IntVarP(&opts.Threads, "threads", "t", config.DefaultThreads, "Maximum concurrent requests")
	f.Float64Var(&timeoutSecs, "timeout", config.DefaultTimeout.Seconds(), "Request timeout in seconds")

	// HTTP
	f.StringArrayVarP(&headerArgs, "headers", "H", nil, "Extra request header (Key: Value), repeatable")
	f.StringVarP(&cookieArg, "cookies", "c", "", "Cookie header content (a=1; b=2)")
	f.StringVarP(&opts.UserAgent, "useragent", "a", config.DefaultUserAgent, "User-Agent header value")
	f.StringVar(&opts.Proxy, "proxy", "", "HTTP/SOCKS5 proxy URL")
	f.BoolVarP(&opts.FollowRedirects, "follow-redirect", "r", false, "Follow HTTP redirects")
	f.BoolVarP(&opts.NoTLSValidation, "no-tls-validation", "k", false, "Skip TLS certificate verification")

	// Output
	f.BoolVarP(&opts.Expanded, "expanded", "e", false, "Print the final URL of every finding")
	f.BoolVarP(&opts.NoStatus, "no-status", "n", false, "Do not print status codes")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	f.BoolVar(&opts.Progress, "progress", false, "Show a progress spinner on stderr")
	f.BoolVar(&opts.Interactive, "interactive", false, "Pause and resume with Enter or Space")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging on stderr")

	// Configuration
	f.StringVar(&opts.ConfigFile, "config", "", "YAML config file (DIRPROBE_* environment variables also apply)")

	// Custom help: categorized flags.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})
}

// prepare turns parsed flags, the config file, environment variables and
// an optional request file into validated options. Explicit flags always
// win; the request file is applied after the config file.
func prepare(flags *pflag.FlagSet) error {
	syncLogs = logging.Init(opts.Verbose)

	opts.Timeout = time.Duration(timeoutSecs * float64(time.Second))

	headers, err := config.ParseHeaders(headerArgs)
	if err != nil {
		return err
	}
	opts.Headers = headers
	if opts.Cookies, err = config.ParseCookies(cookieArg); err != nil {
		return err
	}

	file, err := config.LoadFile(opts.ConfigFile)
	if err != nil {
		return err
	}
	if err := file.Apply(&opts, flags.Changed); err != nil {
		return err
	}

	if opts.RequestFile != "" {
		if err := applyRequestFile(flags); err != nil {
			return err
		}
	}

	if err := opts.Validate(); err != nil {
		return err
	}
	zap.S().Debugw("configuration ready",
		"url", opts.URL,
		"wordlist", opts.WordlistPath,
		"method", opts.Method,
		"threads", opts.Threads,
		"timeout", opts.Timeout,
		"extensions", opts.ExtensionSet,
	)
	return nil
}

// applyRequestFile fills URL, method, user agent, headers and cookies from
// a raw request unless the matching flag was set explicitly.
func applyRequestFile(flags *pflag.FlagSet) error {
	parsed, err := reqparse.ParseFile(opts.RequestFile)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "parsing request file"), config.ErrInvalidConfig)
	}
	if !flags.Changed("url") {
		opts.URL = parsed.URL
	}
	if !flags.Changed("method") {
		opts.Method = parsed.Method
	}
	if !flags.Changed("useragent") && parsed.UserAgent != "" {
		opts.UserAgent = parsed.UserAgent
	}
	if len(parsed.Headers) > 0 && opts.Headers == nil {
		opts.Headers = make(map[string]string, len(parsed.Headers))
	}
	for k, v := range parsed.Headers {
		k = http.CanonicalHeaderKey(k)
		if _, exists := opts.Headers[k]; !exists {
			opts.Headers[k] = v
		}
	}
	if !flags.Changed("cookies") && len(parsed.Cookies) > 0 {
		opts.Cookies = parsed.Cookies
	}
	zap.S().Debugw("loaded request file", "path", opts.RequestFile, "url", opts.URL)
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	// pflag would read -sc as -s "c"; rewrite before cobra parses args.
	os.Args = rewriteArgs(os.Args)
	err := rootCmd.Execute()
	syncLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func rewriteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		switch {
		case arg == "-sc":
			out[i] = "--status-code"
		case strings.HasPrefix(arg, "-sc="):
			out[i] = "--status-code=" + strings.TrimPrefix(arg, "-sc=")
		default:
			out[i] = arg
		}
	}
	return out
}

func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return exitInterrupt
	}
	return exitError
}

// intSliceValue implements pflag.Value for comma-separated int slices.
type intSliceValue struct {
	target *[]int
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *intSliceValue) Set(s string) error {
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return errors.Wrapf(err, "invalid number %q", p)
		}
		*v.target = append(*v.target, n)
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	// Pad to fixed column width for aligned descriptions.
	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
     ___  _                       __
    / _ \(_)____ ___  _______  / /  ___
   / // / / __// _ \/ __/ _ \/ _ \/ -_)
  /____/_/_/  / .__/_/  \___/_.__/\__/
             /_/                         %s

`, ver)
}
