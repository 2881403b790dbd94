package cms

import "context"

// Account is the users-permissions record in the CMS. DocumentID is the
// stable identifier the rest of the portal keys on.
type Account struct {
	DocumentID string `json:"documentId"`
	Username   string `json:"username"`
	Email      string `json:"email"`
}

// AuthPayload is what the CMS hands back from login and register.
type AuthPayload struct {
	JWT     string  `json:"jwt"`
	Account Account `json:"user"`
}

const findAccountQuery = `query ($email: String!) {
  usersPermissionsUsers(filters: { email: { eq: $email } }) {
    documentId
    username
    email
  }
}`

const loginMutation = `mutation ($identifier: String!, $password: String!) {
  login(input: { identifier: $identifier, password: $password }) {
    jwt
    user {
      documentId
      username
      email
    }
  }
}`

const registerMutation = `mutation ($username: String!, $email: String!, $password: String!) {
  register(input: { username: $username, email: $email, password: $password }) {
    jwt
    user {
      documentId
      username
      email
    }
  }
}`

// FindAccountByEmail looks up a CMS account. A missing account is not an
// error: it returns (nil, nil).
func (c *Client) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	var out struct {
		Accounts []Account `json:"usersPermissionsUsers"`
	}
	if err := c.Do(ctx, "find_account", findAccountQuery, map[string]any{"email": email}, &out); err != nil {
		return nil, err
	}
	if len(out.Accounts) == 0 {
		return nil, nil
	}
	return &out.Accounts[0], nil
}

// Login authenticates against the CMS with an identifier (email) and
// password. For provider-reconciled accounts the password is the provider
// uid by convention.
func (c *Client) Login(ctx context.Context, identifier, password string) (AuthPayload, error) {
	var out struct {
		Login AuthPayload `json:"login"`
	}
	err := c.Do(ctx, "login", loginMutation, map[string]any{
		"identifier": identifier,
		"password":   password,
	}, &out)
	return out.Login, err
}

// Register creates a new CMS account and returns its first token.
func (c *Client) Register(ctx context.Context, username, email, password string) (AuthPayload, error) {
	var out struct {
		Register AuthPayload `json:"register"`
	}
	err := c.Do(ctx, "register", registerMutation, map[string]any{
		"username": username,
		"email":    email,
		"password": password,
	}, &out)
	return out.Register, err
}
