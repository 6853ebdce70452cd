package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

const (
	profilePath = "/api/auth/profile"
	avatarPath  = "/api/auth/avatar"
)

func (c *Client) GetProfile(ctx context.Context) (models.Profile, error) {
	var p models.Profile
	err := c.do(ctx, http.MethodGet, profilePath, nil, &p)
	return p, err
}

func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.Profile, error) {
	var p models.Profile
	err := c.do(ctx, http.MethodPut, profilePath, req, &p)
	return p, err
}

// UploadAvatar sends the image as a multipart form under the avatar field.
func (c *Client) UploadAvatar(ctx context.Context, file models.AvatarFile) (models.AvatarResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, constants.AvatarFormField, file.Name))
	h.Set("Content-Type", file.MimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return models.AvatarResponse{}, fmt.Errorf("building avatar form: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return models.AvatarResponse{}, fmt.Errorf("building avatar form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.AvatarResponse{}, fmt.Errorf("building avatar form: %w", err)
	}

	raw, err := c.send(ctx, http.MethodPost, avatarPath, &buf, mw.FormDataContentType())
	if err != nil {
		return models.AvatarResponse{}, err
	}
	var res models.AvatarResponse
	if err := decode("POST "+avatarPath, raw, &res); err != nil {
		return models.AvatarResponse{}, err
	}
	return res, nil
}

func (c *Client) DeleteAvatar(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, avatarPath, nil, nil)
}
