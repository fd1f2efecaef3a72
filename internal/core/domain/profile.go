package domain

// Profile is an immutable snapshot of a GitHub user.
// A refresh replaces the whole value; fields are never merged.
type Profile struct {
	// Login is the unique user name.
	Login string `json:"login"`
	// Name is the display name, empty when unset.
	Name string `json:"name,omitempty"`
	// AvatarURL references the avatar image.
	AvatarURL string `json:"avatar_url"`
	// Bio is the free-form profile text.
	Bio string `json:"bio,omitempty"`
	// Location is the self-reported location.
	Location string `json:"location,omitempty"`
	// Blog is the website link.
	Blog string `json:"blog,omitempty"`
	// Followers is the follower count.
	Followers int `json:"followers"`
	// Following is the number of users followed.
	Following int `json:"following"`
}

// DisplayName returns Name, falling back to Login.
func (p *Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Login
}
