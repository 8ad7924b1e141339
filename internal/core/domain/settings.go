package domain

import "strings"

// StoreBackend selects the DocumentStore implementation.
type StoreBackend string

const (
	// StoreFirestore writes to a Google Cloud Firestore collection.
	StoreFirestore StoreBackend = "firestore"

	// StoreSQLite writes to a local SQLite database.
	StoreSQLite StoreBackend = "sqlite"

	// StoreMemory keeps documents in process. Useful for previews.
	StoreMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreFirestore, StoreSQLite, StoreMemory:
		return true
	default:
		return false
	}
}

func (b StoreBackend) String() string {
	return string(b)
}

// ParseStoreBackend normalises a backend name. Unknown names are returned
// as-is so validation can report them.
func ParseStoreBackend(s string) StoreBackend {
	return StoreBackend(strings.ToLower(strings.TrimSpace(s)))
}

// AllStoreBackends returns every supported backend.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{StoreFirestore, StoreSQLite, StoreMemory}
}

// OverpassSettings configures the Overpass API connector.
type OverpassSettings struct {
	URL string `key:"overpass.url" validate:"required,url"`

	// RatePerSecond throttles requests. Zero disables throttling.
	RatePerSecond float64 `key:"overpass.rate_per_second" validate:"gte=0"`

	TimeoutSeconds int `key:"overpass.timeout_seconds" validate:"gte=1,lte=600"`
}

// StoreSettings selects and names the document store.
type StoreSettings struct {
	Backend    StoreBackend `key:"store.backend" validate:"oneof=firestore sqlite memory"`
	Collection string       `key:"store.collection" validate:"required,max=100"`
}

// FirestoreSettings holds Google Cloud connection settings.
type FirestoreSettings struct {
	// Project is required when the backend is firestore.
	Project string `key:"firestore.project"`

	// Database is the Firestore database ID. Empty selects "(default)".
	Database string `key:"firestore.database"`

	// CredentialsFile is a service account key. Empty uses Application
	// Default Credentials.
	CredentialsFile string `key:"firestore.credentials_file" validate:"omitempty,file"`
}

// SQLiteSettings configures the local store.
type SQLiteSettings struct {
	// DataDir holds courses.db. Empty selects ~/.golf-loader/data.
	DataDir string `key:"sqlite.data_dir"`
}

// SyncSettings holds defaults for sync runs.
type SyncSettings struct {
	Concurrency int `key:"sync.concurrency" validate:"gte=1,lte=50"`
}

// Settings holds all loader settings.
type Settings struct {
	Overpass  OverpassSettings
	Store     StoreSettings
	Firestore FirestoreSettings
	SQLite    SQLiteSettings
	Sync      SyncSettings
}

// DefaultSettings returns settings for a run against the public Overpass
// instance and Firestore.
func DefaultSettings() Settings {
	return Settings{
		Overpass: OverpassSettings{
			URL:            "https://overpass-api.de/api/interpreter",
			RatePerSecond:  0.5,
			TimeoutSeconds: 90,
		},
		Store: StoreSettings{
			Backend:    StoreFirestore,
			Collection: "courses",
		},
		Sync: SyncSettings{
			Concurrency: 1,
		},
	}
}
