package cfg

type Cfg struct {
	// Storage configuration
	DBPath    string
	PrefsPath string

	// Application configuration
	Port         string
	RemoteURL    string
	WorkerCount  int
	SyncInterval int
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
