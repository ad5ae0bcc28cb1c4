package reqctx

import (
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// ActorTypeUser is the actor type derived from an authenticated user.
const ActorTypeUser = "user"

// User is the identity record returned by the upstream identity endpoint.
type User struct {
	ID    string   `mapstructure:"id"`
	Roles []string `mapstructure:"roles"`

	// Attributes holds every other field of the identity payload
	// (name, email, ...) for templates.
	Attributes map[string]any `mapstructure:",remain"`
}

// Actor is the minimal identity projection used for audit trails.
type Actor struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

func (u *User) clone() User {
	cp := User{ID: u.ID, Roles: slices.Clone(u.Roles)}
	if u.Attributes != nil {
		cp.Attributes = make(map[string]any, len(u.Attributes))
		for k, v := range u.Attributes {
			cp.Attributes[k] = v
		}
	}
	return cp
}

// DecodeUser converts a parsed JSON identity payload into a User.
// Numeric ids are accepted and rendered as strings.
func DecodeUser(payload any) (*User, error) {
	if _, ok := payload.(map[string]any); !ok {
		return nil, errors.Errorf("identity payload must be an object, got %T", payload)
	}

	var u User
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &u,
	})
	if err != nil {
		return nil, errors.Wrap(err, "build identity decoder")
	}
	if err := dec.Decode(payload); err != nil {
		return nil, errors.Wrap(err, "decode identity payload")
	}
	if u.ID == "" {
		return nil, errors.New("identity payload has no id")
	}
	return &u, nil
}
