package seed

import (
	"fmt"
	"os"

	"quorum/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Preset is a declarative seed plan loaded from a YAML file. It combines
// volume knobs with a list of fixed accounts that always exist after seeding.
type Preset struct {
	Clean      bool `yaml:"clean"`
	NumUsers   int  `yaml:"num_users"`
	NumPosts   int  `yaml:"num_posts"`
	SkipBcrypt bool `yaml:"skip_bcrypt"`
	MaxDays    int  `yaml:"max_days"`

	Users []PresetUser `yaml:"users"`
}

// PresetUser is a fixed account described in a preset file.
type PresetUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Admin    bool   `yaml:"admin"`
}

// LoadPreset reads and parses a preset YAML file.
func LoadPreset(path string) (*Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset file: %w", err)
	}
	var preset Preset
	if err := yaml.Unmarshal(raw, &preset); err != nil {
		return nil, fmt.Errorf("parse preset file: %w", err)
	}
	for i, u := range preset.Users {
		if u.Username == "" {
			return nil, fmt.Errorf("preset user %d: username is required", i)
		}
	}
	return &preset, nil
}

// ApplyPreset creates the preset's fixed accounts and then runs the generated
// seed pass with the preset's volume options.
func ApplyPreset(db *gorm.DB, preset *Preset) error {
	opts := Options{
		NumUsers:    preset.NumUsers,
		NumPosts:    preset.NumPosts,
		ShouldClean: preset.Clean,
		SkipBcrypt:  preset.SkipBcrypt,
		MaxDays:     preset.MaxDays,
	}

	if opts.ShouldClean {
		if err := clearData(db, false); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
		// Seed's own clean pass would wipe the fixed accounts again.
		opts.ShouldClean = false
	}

	factory := NewFactory(db, opts)
	for _, fixed := range preset.Users {
		fixed := fixed
		_, err := factory.CreateUser(func(u *models.User) {
			u.Username = fixed.Username
			if fixed.Email != "" {
				u.Email = fixed.Email
			}
			u.IsAdmin = fixed.Admin
			if fixed.Password != "" {
				if opts.SkipBcrypt {
					u.Password = fixed.Password
				} else {
					hashed, _ := bcrypt.GenerateFromPassword([]byte(fixed.Password), bcrypt.DefaultCost)
					u.Password = string(hashed)
				}
			}
		})
		if err != nil {
			return fmt.Errorf("create preset user %q: %w", fixed.Username, err)
		}
	}

	return Seed(db, opts)
}
