package bootstrap

import "context"

// Seeder loads data the bot wants ready before the first update.
type Seeder interface {
	Seed(ctx context.Context) error
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context) error

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context) error {
	return f(ctx)
}

// NamedSeeder labels a Seeder for logs. Required seeders abort bootstrap
// on failure.
type NamedSeeder struct {
	Name     string
	Required bool
	Seeder
}
