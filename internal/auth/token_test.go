package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenCodec_EncodeDecode_RoundTrip(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"), time.Hour)

	token, err := codec.Encode(Claims{
		UserID: 42,
		Name:   "alice",
		Role:   "client",
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if decoded.UserID != 42 {
		t.Errorf("UserID = %d, want 42", decoded.UserID)
	}
	if decoded.Name != "alice" {
		t.Errorf("Name = %q, want %q", decoded.Name, "alice")
	}
	if decoded.Role != "client" {
		t.Errorf("Role = %q, want %q", decoded.Role, "client")
	}
	if decoded.Version != claimsVersion {
		t.Errorf("Version = %d, want %d", decoded.Version, claimsVersion)
	}
	if decoded.ID == "" {
		t.Error("jti should be set automatically")
	}
	if decoded.Subject != "42" {
		t.Errorf("Subject = %q, want %q", decoded.Subject, "42")
	}
	if decoded.ExpiresAt == nil {
		t.Fatal("ExpiresAt should be set")
	}
}

func TestTokenCodec_Decode_Expired(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"), time.Hour)

	// 過去の有効期限を明示的に指定する
	token, err := codec.Encode(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID: 1,
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	_, err = codec.Decode(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Decode() error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenCodec_Decode_MissingExpiry(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"), time.Hour)

	// 正しい鍵で署名されていてもexpを持たないトークンは拒否する。
	// 受け入れると失効しないセッションになってしまう。
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			ID:       "jti-noexp",
		},
		UserID:  1,
		Role:    "client",
		Version: claimsVersion,
	})
	token, err := noExp.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	_, err = codec.Decode(token)
	if !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Decode() error = %v, want ErrTokenMalformed", err)
	}
}

func TestTokenCodec_Decode_WrongClaimsVersion(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"), time.Hour)

	// vtvが現行バージョンと一致しないトークンはスキーマ不一致として拒否する
	stale := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ID:        "jti-stale",
		},
		UserID:  1,
		Role:    "client",
		Version: claimsVersion + 1,
	})
	token, err := stale.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	_, err = codec.Decode(token)
	if !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Decode() error = %v, want ErrTokenMalformed", err)
	}
}

func TestTokenCodec_Decode_TamperedPayload(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"), time.Hour)

	token, err := codec.Encode(Claims{UserID: 1, Role: "client"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// ペイロード部分を改ざんすると署名検証で失敗する
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token should have 3 parts, got %d", len(parts))
	}
	tampered := parts[0] + ".eyJ1c2VyX2lkIjo5OTk5fQ." + parts[2]

	_, err = codec.Decode(tampered)
	if err == nil {
		t.Fatal("Decode() should fail for a tampered token")
	}
	if !errors.Is(err, ErrTokenSignature) && !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Decode() error = %v, want signature or malformed error", err)
	}
}

func TestTokenCodec_Decode_WrongSecret(t *testing.T) {
	codec := NewTokenCodec([]byte("secret-a"), time.Hour)
	other := NewTokenCodec([]byte("secret-b"), time.Hour)

	token, err := codec.Encode(Claims{UserID: 1})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	_, err = other.Decode(token)
	if !errors.Is(err, ErrTokenSignature) {
		t.Errorf("Decode() error = %v, want ErrTokenSignature", err)
	}
}

func TestTokenCodec_Decode_Garbage(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"), time.Hour)

	for _, input := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := codec.Decode(input); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Decode(%q) error = %v, want ErrTokenMalformed", input, err)
		}
	}
}

func TestTokenCodec_Encode_UniqueJTI(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"), time.Hour)

	token1, err := codec.Encode(Claims{UserID: 1})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	token2, err := codec.Encode(Claims{UserID: 1})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	c1, err := codec.Decode(token1)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	c2, err := codec.Decode(token2)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	// jtiはトークンごとに一意（個別失効の単位になる）
	if c1.ID == c2.ID {
		t.Error("two tokens for the same user should have different jti values")
	}
}
