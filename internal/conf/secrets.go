package conf

import (
	"fmt"

	"github.com/tphakala/premigrate/internal/secrets"
)

// resolveSecrets replaces secret references in settings with their values.
func resolveSecrets(settings *Settings) error {
	for name, db := range map[string]*DatabaseSettings{
		"source":      &settings.Source,
		"destination": &settings.Destination,
	} {
		password, err := secrets.Resolve(db.PasswordFile, db.Password)
		if err != nil {
			return fmt.Errorf("%s password: %w", name, err)
		}
		db.Password = password
	}

	dsn, err := secrets.ExpandString(settings.Sentry.DSN)
	if err != nil {
		return fmt.Errorf("sentry dsn: %w", err)
	}
	settings.Sentry.DSN = dsn

	for i, u := range settings.Notification.URLs {
		expanded, err := secrets.ExpandString(u)
		if err != nil {
			return fmt.Errorf("notification url %d: %w", i+1, err)
		}
		settings.Notification.URLs[i] = expanded
	}
	return nil
}
