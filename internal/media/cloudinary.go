// Package media talks to Cloudinary, the product image host. Clients
// upload directly with a signature issued here; the server only signs
// and deletes.
package media

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadFolder is the folder signed uploads are placed in.
const UploadFolder = "products"

// UploadSignature is what a client needs for a signed direct upload.
type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
	Folder    string `json:"folder"`
}

// Cloudinary signs direct uploads and deletes hosted images.
type Cloudinary struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	apiKey    string
	apiSecret string
	now       func() time.Time
}

// NewCloudinary builds the admin client. Credentials are not checked
// against the API until the first delete.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, cloudName: cloudName, apiKey: apiKey, apiSecret: apiSecret, now: time.Now}, nil
}

// Sign issues an upload signature over the current timestamp and the
// products folder. Cloudinary rejects it after about an hour.
func (c *Cloudinary) Sign() (UploadSignature, error) {
	ts := c.now().Unix()
	params := url.Values{
		"timestamp": {strconv.FormatInt(ts, 10)},
		"folder":    {UploadFolder},
	}
	sig, err := api.SignParameters(params, c.apiSecret)
	if err != nil {
		return UploadSignature{}, err
	}
	return UploadSignature{
		Signature: sig,
		Timestamp: ts,
		CloudName: c.cloudName,
		APIKey:    c.apiKey,
		Folder:    UploadFolder,
	}, nil
}

// DeleteByURL destroys the image behind a delivery URL. Links that are
// not Cloudinary image URLs are ignored.
func (c *Cloudinary) DeleteByURL(ctx context.Context, link string) error {
	id := PublicID(link)
	if id == "" {
		return nil
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", id, res.Error.Message)
	}
	return nil
}

var publicIDPattern = regexp.MustCompile(`/upload/(?:v\d+/)?(.+)\.(?:jpg|jpeg|png|webp|gif)$`)

// PublicID extracts the public id ("products/abc") from a delivery URL
// such as https://res.cloudinary.com/demo/image/upload/v123/products/abc.jpg.
func PublicID(link string) string {
	m := publicIDPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}
