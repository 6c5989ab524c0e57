package cryptoutil

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
)

const testKeyARN = "arn:aws:kms:us-east-2:000000000000:key/landing-test"

// fakeKMS serves a fixed public key and counts calls.
type fakeKMS struct {
	der   []byte
	usage kmstypes.KeyUsageType
	err   error
	calls int
}

func (f *fakeKMS) GetPublicKey(_ context.Context, in *kms.GetPublicKeyInput, _ ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &kms.GetPublicKeyOutput{KeyId: in.KeyId, PublicKey: f.der, KeyUsage: f.usage}, nil
}

func newFakeKMS(t *testing.T, pub crypto.PublicKey) *fakeKMS {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return &fakeKMS{der: der, usage: kmstypes.KeyUsageTypeSignVerify}
}

func ecKey(t *testing.T, curve elliptic.Curve) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		t.Fatalf("generate ECDSA key: %v", err)
	}
	return key
}

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}
	return key
}

func signECDSA(t *testing.T, key *ecdsa.PrivateKey, msg []byte) []byte {
	t.Helper()
	var digest []byte
	if key.Curve == elliptic.P384() {
		d := sha512.Sum384(msg)
		digest = d[:]
	} else {
		d := sha256.Sum256(msg)
		digest = d[:]
	}
	sig, err := ecdsa.SignASN1(rand.Reader, key, digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return sig
}

func TestVerifySignature_ECDSA(t *testing.T) {
	bundle := []byte("landing bundle bytes")
	for _, curve := range []elliptic.Curve{elliptic.P256(), elliptic.P384()} {
		t.Run(curve.Params().Name, func(t *testing.T) {
			key := ecKey(t, curve)
			v := NewKMSVerifier(newFakeKMS(t, &key.PublicKey), testKeyARN)
			sig := signECDSA(t, key, bundle)

			if err := v.VerifySignature(context.Background(), bundle, sig); err != nil {
				t.Fatalf("valid signature rejected: %v", err)
			}
			if err := v.VerifySignature(context.Background(), []byte("tampered"), sig); err == nil {
				t.Fatal("signature over other bytes accepted")
			}
			other := ecKey(t, curve)
			if err := v.VerifySignature(context.Background(), bundle, signECDSA(t, other, bundle)); err == nil {
				t.Fatal("signature from another key accepted")
			}
		})
	}
}

func TestVerifySignature_UnsupportedCurve(t *testing.T) {
	key := ecKey(t, elliptic.P521())
	v := &KMSVerifier{keyARN: testKeyARN, pubKey: &key.PublicKey}
	if err := v.VerifySignature(context.Background(), []byte("x"), []byte("sig")); err == nil {
		t.Fatal("P-521 should be unsupported")
	}
}

func TestVerifySignature_RSA(t *testing.T) {
	key := rsaKey(t)
	bundle := []byte("landing bundle bytes")
	digest := sha256.Sum256(bundle)

	pss, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], nil)
	if err != nil {
		t.Fatal(err)
	}
	pkcs, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		t.Fatal(err)
	}

	v := NewKMSVerifier(newFakeKMS(t, &key.PublicKey), testKeyARN)
	if err := v.VerifySignature(context.Background(), bundle, pss); err != nil {
		t.Fatalf("PSS signature rejected: %v", err)
	}
	if err := v.VerifySignature(context.Background(), bundle, pkcs); err == nil {
		t.Fatal("PKCS1v15 accepted without fallback enabled")
	}

	v.AllowPKCS1v15 = true
	if err := v.VerifySignature(context.Background(), bundle, pkcs); err != nil {
		t.Fatalf("PKCS1v15 rejected with fallback enabled: %v", err)
	}
	if err := v.VerifySignature(context.Background(), []byte("tampered"), pkcs); err == nil {
		t.Fatal("PKCS1v15 over other bytes accepted")
	}
}

func TestVerifySignature_EmptyAndCorrupt(t *testing.T) {
	key := ecKey(t, elliptic.P256())
	v := NewKMSVerifier(newFakeKMS(t, &key.PublicKey), testKeyARN)
	sig := signECDSA(t, key, []byte("m"))
	sig[len(sig)-1] ^= 0xff

	for name, s := range map[string][]byte{"nil": nil, "empty": {}, "corrupt": sig} {
		if err := v.VerifySignature(context.Background(), []byte("m"), s); err == nil {
			t.Errorf("%s signature accepted", name)
		}
	}
}

func TestVerifySignature_UnsupportedKeyType(t *testing.T) {
	v := &KMSVerifier{keyARN: testKeyARN, pubKey: "not a key"}
	if err := v.VerifySignature(context.Background(), []byte("m"), []byte("s")); err == nil {
		t.Fatal("expected error for unsupported key type")
	}
}

func TestPublicKey_CachesResult(t *testing.T) {
	key := ecKey(t, elliptic.P384())
	f := newFakeKMS(t, &key.PublicKey)
	v := NewKMSVerifier(f, testKeyARN)

	for i := 0; i < 3; i++ {
		if _, err := v.PublicKey(context.Background()); err != nil {
			t.Fatalf("PublicKey: %v", err)
		}
	}
	if f.calls != 1 {
		t.Fatalf("GetPublicKey calls = %d, want 1", f.calls)
	}
	if v.KeyARN() != testKeyARN {
		t.Fatalf("KeyARN = %q", v.KeyARN())
	}
}

func TestPublicKey_Errors(t *testing.T) {
	key := ecKey(t, elliptic.P256())

	wrongUsage := newFakeKMS(t, &key.PublicKey)
	wrongUsage.usage = kmstypes.KeyUsageTypeEncryptDecrypt

	badDER := newFakeKMS(t, &key.PublicKey)
	badDER.der = []byte("garbage")

	tests := map[string]*KMSVerifier{
		"nil client":  {keyARN: testKeyARN},
		"api error":   NewKMSVerifier(&fakeKMS{err: errors.New("AccessDenied")}, testKeyARN),
		"wrong usage": NewKMSVerifier(wrongUsage, testKeyARN),
		"bad der":     NewKMSVerifier(badDER, testKeyARN),
	}
	for name, v := range tests {
		if _, err := v.PublicKey(context.Background()); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestPublicKey_FailureNotCached(t *testing.T) {
	key := ecKey(t, elliptic.P256())
	f := newFakeKMS(t, &key.PublicKey)
	f.err = errors.New("throttled")
	v := NewKMSVerifier(f, testKeyARN)

	if _, err := v.PublicKey(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	f.err = nil
	if _, err := v.PublicKey(context.Background()); err != nil {
		t.Fatalf("retry after transient error: %v", err)
	}
}
