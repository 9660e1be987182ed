// Package cloud is the object store backed storage variant. Bytes are kept
// in an S3 compatible bucket while delivery runs through the provider CDN:
// URLs look like {delivery}/{cloudName}/{resourceType}/upload/{folder}/{file}
// and the bucket key is everything after the delivery type segment. Because
// only the URL is persisted, deletion and signing recompute the key from
// the URL string.
package cloud

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/blob/s3blob"

	"github.com/loretops/coinvest-docs/config"
	"github.com/loretops/coinvest-docs/service/storage/provider/imaging"
	"github.com/loretops/coinvest-docs/service/types"
	"github.com/loretops/coinvest-docs/service/utils"
)

// Delivery types. Assets stored publicly are delivered as "upload"; signed
// raw assets switch to "authenticated" because the provider serves raw
// resources without access control unless explicitly marked.
const (
	DeliveryUpload        = "upload"
	DeliveryAuthenticated = "authenticated"
)

// Resource types the provider distinguishes in delivery paths.
const (
	ResourceImage = "image"
	ResourceVideo = "video"
	ResourceRaw   = "raw"
)

type Backend struct {
	cloudName   string
	apiKey      string
	apiSecret   string
	bucketName  string
	endpoint    string
	region      string
	deliveryURL string
	client      *s3.Client
	log         *logrus.Logger
}

func NewBackend(cfg *config.ServiceConfig, log *logrus.Logger) *Backend {
	return &Backend{
		cloudName:   cfg.CloudName,
		apiKey:      cfg.CloudKey,
		apiSecret:   cfg.CloudSecret,
		bucketName:  cfg.CloudBucket,
		endpoint:    cfg.CloudEndpoint,
		region:      cfg.CloudRegion,
		deliveryURL: strings.TrimSuffix(cfg.CloudDeliveryURL, "/"),
		log:         log,
	}
}

func (b *Backend) Name() string {
	return "cloud"
}

func (b *Backend) Setup(_ context.Context) error {
	s3Config := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(b.apiKey, b.apiSecret, ""),
		Region:      b.region,
	}
	if b.endpoint != "" {
		s3Config.BaseEndpoint = aws.String(b.endpoint)
	}

	b.client = s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return nil
}

func (b *Backend) openBucket(ctx context.Context) (*blob.Bucket, error) {
	return s3blob.OpenBucketV2(ctx, b.client, b.bucketName, nil)
}

func (b *Backend) StoreFile(ctx context.Context, file *types.StoredFile, targetPath string) (string, error) {
	ext := utils.ExtensionFor(file.OriginalName, file.MimeType)
	return b.store(ctx, file, targetPath, ext, file.Content)
}

func (b *Backend) StoreImage(ctx context.Context, file *types.StoredFile, targetPath string, opts config.ImageOptions) (string, error) {
	content, ext, err := imaging.Transform(file.Content, opts)
	if err != nil {
		return "", types.NewStorage(err, "could not process image %s", file.OriginalName)
	}
	return b.store(ctx, file, targetPath, ext, content)
}

func (b *Backend) store(ctx context.Context, file *types.StoredFile, targetPath, ext string, content []byte) (string, error) {
	bucket, err := b.openBucket(ctx)
	if err != nil {
		return "", types.NewStorage(err, "could not open bucket %s", b.bucketName)
	}
	defer closeAndLog(b.log, bucket)

	key := path.Join(targetPath, utils.UniqueFileName(file.OriginalName, ext))
	if err = bucket.WriteAll(ctx, key, content, nil); err != nil {
		return "", types.NewStorage(err, "could not upload file %s", file.OriginalName)
	}

	return b.PublicURL(key), nil
}

// DeleteFile re-derives the bucket key from a delivery URL and removes the
// object. Absent objects, foreign URLs and provider failures report false.
func (b *Backend) DeleteFile(ctx context.Context, fileURL string) bool {
	asset, err := ParseDeliveryURL(fileURL)
	if err != nil {
		b.log.WithError(err).WithField("url", fileURL).Warn("Could not derive storage key from URL")
		return false
	}

	bucket, err := b.openBucket(ctx)
	if err != nil {
		b.log.WithError(err).Warn("Could not open storage bucket")
		return false
	}
	defer closeAndLog(b.log, bucket)

	exists, err := bucket.Exists(ctx, asset.Key())
	if err != nil || !exists {
		if err != nil {
			b.log.WithError(err).WithField("key", asset.Key()).Warn("Could not check stored object")
		}
		return false
	}

	if err = bucket.Delete(ctx, asset.Key()); err != nil {
		b.log.WithError(err).WithField("key", asset.Key()).Warn("Could not delete stored object")
		return false
	}
	return true
}

// SignedURL rebuilds the delivery URL with an absolute unix expiry and an
// HMAC signature the CDN validates. Raw assets are switched to the
// authenticated delivery type; image and video stay on public upload
// delivery and only gain the expiring signature.
func (b *Backend) SignedURL(_ context.Context, fileURL string, expiresIn time.Duration) (string, error) {
	asset, err := ParseDeliveryURL(fileURL)
	if err != nil {
		return "", types.NewStorage(err, "could not sign url %s", fileURL)
	}

	deliveryType := DeliveryUpload
	if asset.ResourceType == ResourceRaw {
		deliveryType = DeliveryAuthenticated
	}

	expiresAt := time.Now().Add(expiresIn).Unix()
	signedPath := fmt.Sprintf("%s/%s/%s/%s", b.cloudName, asset.ResourceType, deliveryType, asset.Key())

	return fmt.Sprintf("%s/%s?exp=%d&sig=%s",
		b.deliveryURL, signedPath, expiresAt, b.signature(signedPath, expiresAt)), nil
}

func (b *Backend) PublicURL(key string) string {
	resourceType := resourceTypeForExt(path.Ext(key))
	return fmt.Sprintf("%s/%s/%s/%s/%s", b.deliveryURL, b.cloudName, resourceType, DeliveryUpload, key)
}

func (b *Backend) signature(signedPath string, expiresAt int64) string {
	mac := hmac.New(sha256.New, []byte(b.apiSecret))
	fmt.Fprintf(mac, "%s:%d", signedPath, expiresAt)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Asset is the backend native address recomputed from a delivery URL.
type Asset struct {
	Folder       string
	PublicID     string
	Ext          string
	ResourceType string
}

// Key is the bucket key of the asset.
func (a Asset) Key() string {
	if a.Folder == "" {
		return a.PublicID + a.Ext
	}
	return a.Folder + "/" + a.PublicID + a.Ext
}

// ParseDeliveryURL inverts a delivery URL into its native address:
// segments between the delivery type marker and the filename form the
// folder, the filename minus extension is the public ID, and the resource
// type is classified from the extension.
func ParseDeliveryURL(fileURL string) (Asset, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return Asset{}, err
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	marker := -1
	for i, segment := range segments {
		if segment == DeliveryUpload || segment == DeliveryAuthenticated {
			marker = i
			break
		}
	}
	if marker < 0 || marker == len(segments)-1 {
		return Asset{}, fmt.Errorf("url %s carries no delivery type marker", fileURL)
	}

	filename := segments[len(segments)-1]
	ext := path.Ext(filename)

	return Asset{
		Folder:       strings.Join(segments[marker+1:len(segments)-1], "/"),
		PublicID:     strings.TrimSuffix(filename, ext),
		Ext:          ext,
		ResourceType: resourceTypeForExt(ext),
	}, nil
}

func resourceTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ResourceImage
	case ".mp4", ".webm", ".mov":
		return ResourceVideo
	default:
		return ResourceRaw
	}
}

func closeAndLog(log *logrus.Logger, bucket *blob.Bucket) {
	if err := bucket.Close(); err != nil {
		log.WithError(err).Warn("Could not close storage bucket")
	}
}
