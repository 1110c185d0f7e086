package version

// Version is the API version reported by / and /api. Release builds override
// it with -ldflags "-X github.com/inkwell/bookstore/pkg/version.Version=1.2.3".
var Version = "1.0.0"

// UserAgent identifies the API client in requests.
func UserAgent() string {
	return "bookctl/" + Version
}
