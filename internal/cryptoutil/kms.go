package cryptoutil

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"crypto/x509"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"

	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// KeyFetcher is the KMS call the verifier makes. *kms.Client satisfies it.
type KeyFetcher interface {
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
}

// KMSVerifier checks landing bundle signatures locally against the public
// half of a KMS signing key. The key is fetched on first use and kept; a
// failed fetch is retried on the next call.
type KMSVerifier struct {
	client KeyFetcher
	keyARN string

	// AllowPKCS1v15 accepts RSA PKCS#1 v1.5 signatures when PSS fails.
	AllowPKCS1v15 bool

	mu     sync.Mutex
	pubKey crypto.PublicKey
}

func NewKMSVerifier(client KeyFetcher, keyARN string) *KMSVerifier {
	return &KMSVerifier{client: client, keyARN: keyARN}
}

func (v *KMSVerifier) KeyARN() string { return v.keyARN }

// PublicKey returns the cached key, fetching it from KMS the first time.
func (v *KMSVerifier) PublicKey(ctx context.Context) (crypto.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pubKey != nil {
		return v.pubKey, nil
	}
	if v.client == nil {
		return nil, xerrors.New("kms client is not configured")
	}

	out, err := v.client.GetPublicKey(ctx, &kms.GetPublicKeyInput{KeyId: aws.String(v.keyARN)})
	if err != nil {
		return nil, xerrors.Wrapf(err, "kms get public key %s", v.keyARN)
	}
	if out.KeyUsage != kmstypes.KeyUsageTypeSignVerify {
		return nil, xerrors.Newf("kms key %s has usage %s, want SIGN_VERIFY", v.keyARN, out.KeyUsage)
	}
	pub, err := x509.ParsePKIXPublicKey(out.PublicKey)
	if err != nil {
		return nil, xerrors.Wrap(err, "parse kms public key")
	}
	v.pubKey = pub
	return pub, nil
}

// VerifySignature checks signature over message. ECDSA keys hash with
// SHA-256 on P-256 and SHA-384 on P-384; RSA keys use SHA-256 with PSS.
func (v *KMSVerifier) VerifySignature(ctx context.Context, message, signature []byte) error {
	pub, err := v.PublicKey(ctx)
	if err != nil {
		return err
	}
	switch key := pub.(type) {
	case *ecdsa.PublicKey:
		return verifyECDSA(key, message, signature)
	case *rsa.PublicKey:
		return verifyRSA(key, message, signature, v.AllowPKCS1v15)
	default:
		return xerrors.Newf("unsupported public key type %T", pub)
	}
}

var curveHash = map[elliptic.Curve]crypto.Hash{
	elliptic.P256(): crypto.SHA256,
	elliptic.P384(): crypto.SHA384,
}

func digest(h crypto.Hash, message []byte) []byte {
	d := h.New()
	d.Write(message)
	return d.Sum(nil)
}

func verifyECDSA(key *ecdsa.PublicKey, message, signature []byte) error {
	h, ok := curveHash[key.Curve]
	if !ok {
		return xerrors.Newf("unsupported ECDSA curve %s", key.Curve.Params().Name)
	}
	if !ecdsa.VerifyASN1(key, digest(h, message), signature) {
		return xerrors.Newf("ECDSA %s signature does not verify (%s)", key.Curve.Params().Name, h)
	}
	return nil
}

func verifyRSA(key *rsa.PublicKey, message, signature []byte, allowPKCS1v15 bool) error {
	d := digest(crypto.SHA256, message)
	err := rsa.VerifyPSS(key, crypto.SHA256, d, signature, nil)
	if err == nil {
		return nil
	}
	if !allowPKCS1v15 {
		return xerrors.Wrap(err, "RSA-PSS signature does not verify")
	}
	return xerrors.Wrap(rsa.VerifyPKCS1v15(key, crypto.SHA256, d, signature), "RSA signature does not verify")
}
