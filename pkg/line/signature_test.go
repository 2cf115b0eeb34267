package line

import "testing"

func TestValidateSignature(t *testing.T) {
	t.Parallel()

	secret := "channel-secret"
	body := []byte(`{"events":[]}`)

	if !ValidateSignature(secret, Sign(secret, body), body) {
		t.Fatal("expected own signature to validate")
	}
	if ValidateSignature("other-secret", Sign(secret, body), body) {
		t.Fatal("expected signature under another secret to fail")
	}
	if ValidateSignature(secret, Sign(secret, body), []byte("tampered")) {
		t.Fatal("expected tampered body to fail")
	}
}

func TestValidateSignatureEmptyInputs(t *testing.T) {
	t.Parallel()

	if ValidateSignature("", "sig", []byte("body")) {
		t.Fatal("empty secret must not validate")
	}
	if ValidateSignature("secret", "", []byte("body")) {
		t.Fatal("empty signature must not validate")
	}
}
