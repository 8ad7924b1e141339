package file

import (
	"os"
	"path/filepath"
)

// CredentialsRelPath is where a service account key is looked for when
// GOOGLE_APPLICATION_CREDENTIALS is unset.
const CredentialsRelPath = "credentials/serviceAccountKey.json"

// FindCredentials returns the first dirs/credentials/serviceAccountKey.json
// that exists as a regular file, or "" when none does.
func FindCredentials(dirs ...string) string {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(CredentialsRelPath))
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// CredentialDirs returns the directory of the running executable followed by
// the working directory. Unresolvable entries are omitted.
func CredentialDirs() []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	return dirs
}
