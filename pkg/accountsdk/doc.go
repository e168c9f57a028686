/*
Package accountsdk provides a client SDK for the StudyConnect accounts
service.

# Overview

The package is organized around two types:

  - Client: unauthenticated operations (bootstrap, login, invitation
    redemption, registration, health checks) and the entry point for
    creating Sessions
  - Session: authenticated operations with automatic token refresh

Create a Client for the public surface:

	client := accountsdk.NewClient("https://accounts.example.com")

	preview, err := client.ValidateInvitation(ctx, inviteToken)

	resp, err := client.RedeemInvitation(ctx, accountsdk.RedeemRequest{
		Token:       inviteToken,
		DisplayName: "New Student",
		Password:    password,
	})

Log in to get a Session for authenticated calls:

	session, login, err := client.Login(ctx, email, password)

	me, err := session.Me(ctx)

	invite, err := session.CreateInvitation(ctx, accountsdk.InviteRequest{
		Email: "student@example.com",
		Role:  "student",
	})

Sessions rotate their refresh token transparently when the access token
expires; callers never refresh by hand. Sessions are safe for concurrent
use.

# Landing states

Login, redemption, and Me all return a landing state telling the client
where to navigate: "login", "pending", "admin-console", or "dashboard".
Status decides before role, so a pending account always lands on the
pending screen.

# Error handling

Failures surface as *APIError carrying the HTTP status, the machine
readable code, and a description:

	_, err := client.ValidateInvitation(ctx, token)
	var apiErr *accountsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == accountsdk.ErrorCodeInviteExpired {
		// offer to request a new invitation
	}
*/
package accountsdk
