package content

import (
	"context"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/keithlinneman/avatars-web/internal/cryptoutil"
	"github.com/keithlinneman/avatars-web/internal/log"
	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// Load stages reported to LoaderOptions.OnError.
const (
	StageSSM       = "ssm"
	StageDownload  = "download"
	StageChecksum  = "checksum"
	StageSignature = "signature"
	StageExtract   = "extract"
	StageValidate  = "validate"
)

// versionFile optionally names the bundle version.
const versionFile = "VERSION"

// ParamStore is the SSM call the loader needs.
type ParamStore interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ObjectStore is the S3 call the loader needs.
type ObjectStore interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// SignatureVerifier checks a detached signature over a bundle.
// *cryptoutil.KMSVerifier satisfies it.
type SignatureVerifier interface {
	VerifySignature(ctx context.Context, message, signature []byte) error
}

type LoaderOptions struct {
	Logger log.Logger

	// SSM parameter containing the bundle SHA256 hash
	SSMParam string

	// S3 location for bundles: s3://{bucket}/{prefix}/{hash}.tar.gz
	S3Bucket string
	S3Prefix string

	// Verifier, when set, requires {hash}.tar.gz.sig next to the bundle.
	Verifier SignatureVerifier

	Validation ValidationOptions

	// OnError is called with the failing stage. Optional.
	OnError func(stage string)
	// OnLoaded is called with the load duration of a successful bundle. Optional.
	OnLoaded func(d time.Duration)

	// Clients default to ones built from AWSConfig, or the default AWS config.
	SSM       ParamStore
	S3        ObjectStore
	AWSConfig *aws.Config
}

type Loader struct {
	opts   LoaderOptions
	ssm    ParamStore
	s3     ObjectStore
	logger log.Logger
}

// NewLoader creates a new content Loader with the given options
func NewLoader(ctx context.Context, opts LoaderOptions) (*Loader, error) {
	if opts.SSMParam == "" {
		return nil, xerrors.New("SSMParam is required")
	}
	if opts.S3Bucket == "" {
		return nil, xerrors.New("S3Bucket is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}

	l := &Loader{opts: opts, ssm: opts.SSM, s3: opts.S3, logger: opts.Logger}
	if l.ssm != nil && l.s3 != nil {
		return l, nil
	}

	var awsCfg aws.Config
	if opts.AWSConfig != nil {
		awsCfg = *opts.AWSConfig
	} else {
		var err error
		awsCfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, xerrors.Wrap(err, "load AWS config")
		}
	}
	if l.ssm == nil {
		l.ssm = ssm.NewFromConfig(awsCfg)
	}
	if l.s3 == nil {
		l.s3 = s3.NewFromConfig(awsCfg)
	}
	return l, nil
}

func (l *Loader) fail(stage string, err error) error {
	if l.opts.OnError != nil {
		l.opts.OnError(stage)
	}
	return err
}

// FetchCurrentBundleHash gets the current bundle hash from SSM
func (l *Loader) FetchCurrentBundleHash(ctx context.Context) (string, error) {
	out, err := l.ssm.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(l.opts.SSMParam),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", xerrors.Wrapf(err, "get SSM parameter %s", l.opts.SSMParam)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", xerrors.Newf("SSM parameter %s has no value", l.opts.SSMParam)
	}

	hash := strings.ToLower(strings.TrimSpace(*out.Parameter.Value))
	if hash == "" {
		return "", xerrors.Newf("SSM parameter %s is empty", l.opts.SSMParam)
	}
	return hash, nil
}

// s3Key returns the S3 object key for a given hash
func (l *Loader) s3Key(hash string) string {
	if p := strings.Trim(l.opts.S3Prefix, "/"); p != "" {
		return p + "/" + hash + ".tar.gz"
	}
	return hash + ".tar.gz"
}

func (l *Loader) getObject(ctx context.Context, key string, maxSize int64) ([]byte, string, error) {
	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.opts.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", xerrors.Wrapf(err, "get S3 object s3://%s/%s", l.opts.S3Bucket, key)
	}
	defer out.Body.Close()
	return readWithHash(out.Body, maxSize)
}

// Load fetches the current bundle and returns a validated Snapshot
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	hash, err := l.FetchCurrentBundleHash(ctx)
	if err != nil {
		return nil, l.fail(StageSSM, err)
	}
	return l.LoadHash(ctx, hash)
}

// LoadHash fetches a specific bundle by hash and returns a validated Snapshot
func (l *Loader) LoadHash(ctx context.Context, hash string) (*Snapshot, error) {
	start := time.Now()
	key := l.s3Key(hash)

	l.logger.Info(ctx, "downloading landing bundle",
		"bucket", l.opts.S3Bucket,
		"key", key,
		"expected_hash", hash,
	)

	data, actual, err := l.getObject(ctx, key, maxBundleSize)
	if err != nil {
		return nil, l.fail(StageDownload, err)
	}
	if !cryptoutil.HashEqual(actual, hash) {
		return nil, l.fail(StageChecksum, xerrors.Newf("checksum mismatch: expected %s, got %s", hash, actual))
	}

	signed := false
	if l.opts.Verifier != nil {
		sig, _, err := l.getObject(ctx, key+".sig", maxSignatureSize)
		if err != nil {
			return nil, l.fail(StageSignature, xerrors.Wrap(err, "fetch bundle signature"))
		}
		if err := l.opts.Verifier.VerifySignature(ctx, data, sig); err != nil {
			return nil, l.fail(StageSignature, xerrors.Wrap(err, "verify bundle signature"))
		}
		signed = true
	}

	fsys, err := extractTarGzToMem(data)
	if err != nil {
		return nil, l.fail(StageExtract, xerrors.Wrap(err, "extract bundle"))
	}

	snap := &Snapshot{
		FS: fsys,
		Meta: Meta{
			SHA256:     hash,
			Source:     SourceS3,
			VerifiedAt: time.Now().UTC(),
			Version:    bundleVersion(fsys, hash),
			Signed:     signed,
		},
		LoadedAt: time.Now().UTC(),
	}
	if err := ValidateSnapshot(snap, l.opts.Validation); err != nil {
		return nil, l.fail(StageValidate, err)
	}

	d := time.Since(start)
	if l.opts.OnLoaded != nil {
		l.opts.OnLoaded(d)
	}
	l.logger.Info(ctx, "loaded landing bundle",
		"hash", hash,
		"version", snap.Meta.Version,
		"signed", signed,
		"bytes", len(data),
		"duration", d,
	)
	return snap, nil
}

// bundleVersion reads VERSION from the bundle, falling back to the short hash.
func bundleVersion(fsys fs.FS, hash string) string {
	if f, err := fsys.Open(versionFile); err == nil {
		defer f.Close()
		b, err := io.ReadAll(io.LimitReader(f, 128))
		if v := strings.TrimSpace(string(b)); err == nil && v != "" {
			return v
		}
	}
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// LoadIntoManager fetches the current bundle and makes it active
func (l *Loader) LoadIntoManager(ctx context.Context, mgr *Manager) error {
	snap, err := l.Load(ctx)
	if err != nil {
		return err
	}
	mgr.Set(*snap)
	return nil
}
