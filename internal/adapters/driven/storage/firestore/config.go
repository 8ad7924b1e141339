package firestore

import (
	"errors"

	"cloud.google.com/go/firestore"
)

// DefaultCollection is the collection written by the loader.
const DefaultCollection = "courses"

// ErrMissingProject indicates no Google Cloud project was configured.
var ErrMissingProject = errors.New("firestore: project is required")

// Config holds Firestore connection settings.
type Config struct {
	// Project is the Google Cloud project ID.
	Project string

	// Database is the Firestore database ID. Empty selects "(default)".
	Database string

	// Collection holds the course documents. Empty selects DefaultCollection.
	Collection string

	// CredentialsFile is a service account key. Empty uses Application
	// Default Credentials.
	CredentialsFile string
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Project == "" {
		return ErrMissingProject
	}
	return nil
}

func (c Config) database() string {
	if c.Database == "" {
		return firestore.DefaultDatabaseID
	}
	return c.Database
}

func (c Config) collection() string {
	if c.Collection == "" {
		return DefaultCollection
	}
	return c.Collection
}
