package controllers

import (
	"context"
	"strconv"

	"investgame/src/schemas"

	"github.com/go-chi/jwtauth"
)

func (c *Controller) IssueToken(ctx context.Context, req schemas.TokenRequest) (*schemas.TokenResponse, error) {
	user, err := c.Users.Authenticate(ctx, req.UserID, req.PIN)
	if err != nil {
		return nil, toHTTPError(err)
	}

	claims := map[string]interface{}{
		"sub":  strconv.Itoa(user.ID),
		"name": user.Name,
	}
	jwtauth.SetIssuedAt(claims, c.now())
	jwtauth.SetExpiry(claims, c.now().Add(c.TokenTTL))

	_, token, err := c.TokenAuth.Encode(claims)
	if err != nil {
		return nil, err
	}
	return &schemas.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(c.TokenTTL.Seconds()),
	}, nil
}

func (c *Controller) Register(ctx context.Context, req schemas.RegisterRequest) (*schemas.RegisterResponse, error) {
	user, err := c.Users.Register(ctx, req)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &schemas.RegisterResponse{UserID: user.ID, Name: user.Name}, nil
}

func (c *Controller) GetDashboard(ctx context.Context, userID int) (*schemas.Dashboard, error) {
	dashboard, err := c.Users.GetDashboard(ctx, userID)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return dashboard, nil
}
