package settings

import "context"

// Repository defines persistence operations for site-wide settings such as
// the about text.
type Repository interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}
