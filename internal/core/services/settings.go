package services

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driving"
	"github.com/everydaystudy/golf-db-loader/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyOverpassURL          = "overpass.url"
	keyOverpassRate         = "overpass.rate_per_second"
	keyOverpassTimeout      = "overpass.timeout_seconds"
	keyStoreBackend         = "store.backend"
	keyStoreCollection      = "store.collection"
	keyFirestoreProject     = "firestore.project"
	keyFirestoreDatabase    = "firestore.database"
	keyFirestoreCredentials = "firestore.credentials_file"
	keySQLiteDataDir        = "sqlite.data_dir"
	keySyncConcurrency      = "sync.concurrency"
)

// tagFirestoreProject is reported when the firestore backend has no project.
const tagFirestoreProject = "required_for_firestore"

var validate = newSettingsValidator()

func newSettingsValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("key")
	})
	v.RegisterStructValidation(validateFirestoreProject, domain.Settings{})
	return v
}

func validateFirestoreProject(sl validator.StructLevel) {
	var s domain.Settings
	switch v := sl.Current().Interface().(type) {
	case domain.Settings:
		s = v
	case *domain.Settings:
		s = *v
	default:
		return
	}
	if s.Store.Backend == domain.StoreFirestore && s.Firestore.Project == "" {
		sl.ReportError(s.Firestore.Project, keyFirestoreProject, "Project", tagFirestoreProject, "")
	}
}

// settingField describes one key-tagged field of domain.Settings.
type settingField struct {
	kind reflect.Kind
	rule string
}

var settingFields = describeSettings()

func describeSettings() map[string]settingField {
	fields := make(map[string]settingField)
	root := reflect.TypeOf(domain.Settings{})
	for i := range root.NumField() {
		group := root.Field(i).Type
		for j := range group.NumField() {
			f := group.Field(j)
			if key := f.Tag.Get("key"); key != "" {
				fields[key] = settingField{kind: f.Type.Kind(), rule: f.Tag.Get("validate")}
			}
		}
	}
	return fields
}

// SettingsService resolves loader settings from a ConfigStore.
type SettingsService struct {
	configStore     driven.ConfigStore
	findCredentials func() string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithCredentialsLookup supplies a service account key path when none is
// configured.
func WithCredentialsLookup(find func() string) SettingsOption {
	return func(s *SettingsService) {
		s.findCredentials = find
	}
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{configStore: configStore}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get resolves and validates the current settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	for _, key := range s.configStore.Keys() {
		if _, ok := settingFields[key]; !ok {
			logger.Warn("Ignoring unknown setting %q in %s", key, s.configStore.Path())
		}
	}

	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Overpass: domain.OverpassSettings{
			URL:            s.getString(keyOverpassURL, defaults.Overpass.URL),
			RatePerSecond:  s.getFloat(keyOverpassRate, defaults.Overpass.RatePerSecond),
			TimeoutSeconds: s.getInt(keyOverpassTimeout, defaults.Overpass.TimeoutSeconds),
		},
		Store: domain.StoreSettings{
			Backend:    domain.ParseStoreBackend(s.getString(keyStoreBackend, defaults.Store.Backend.String())),
			Collection: s.getString(keyStoreCollection, defaults.Store.Collection),
		},
		Firestore: domain.FirestoreSettings{
			Project:         s.configStore.GetString(keyFirestoreProject),
			Database:        s.configStore.GetString(keyFirestoreDatabase),
			CredentialsFile: s.configStore.GetString(keyFirestoreCredentials),
		},
		SQLite: domain.SQLiteSettings{
			DataDir: s.configStore.GetString(keySQLiteDataDir),
		},
		Sync: domain.SyncSettings{
			Concurrency: s.getInt(keySyncConcurrency, defaults.Sync.Concurrency),
		},
	}

	if settings.Firestore.CredentialsFile == "" && s.findCredentials != nil {
		if path := s.findCredentials(); path != "" {
			logger.Debug("Using service account key %s", path)
			settings.Firestore.CredentialsFile = path
		}
	}

	if err := validate.Struct(settings); err != nil {
		return nil, configErrors(err)
	}
	return settings, nil
}

// Set parses value according to the key's type, validates it and persists it.
func (s *SettingsService) Set(key, value string) error {
	field, ok := settingFields[key]
	if !ok {
		return &domain.ConfigError{
			Field:  key,
			Reason: "unknown setting; valid keys are " + strings.Join(s.Keys(), ", "),
		}
	}

	var parsed any
	switch field.kind {
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return &domain.ConfigError{Field: key, Value: value, Reason: "must be an integer"}
		}
		parsed = n
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &domain.ConfigError{Field: key, Value: value, Reason: "must be a number"}
		}
		parsed = f
	default:
		if key == keyStoreBackend {
			value = domain.ParseStoreBackend(value).String()
		}
		parsed = value
	}

	if field.rule != "" {
		if err := validate.Var(parsed, field.rule); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return &domain.ConfigError{Field: key, Value: value, Reason: reason(verrs[0])}
			}
			return fmt.Errorf("validate %s: %w", key, err)
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised setting key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingFields))
	for k := range settingFields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// configErrors converts validator failures into joined *domain.ConfigError
// values.
func configErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, &domain.ConfigError{
			Field:  fe.Field(),
			Value:  fmt.Sprint(fe.Value()),
			Reason: reason(fe),
		})
	}
	return errors.Join(errs...)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case tagFirestoreProject:
		return "is required when store.backend is firestore"
	case "url":
		return "must be an absolute URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "file":
		return "is not an existing file"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
