package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRegister_Success(t *testing.T) {
	api := &fakeAPI{}
	a, out := newTestApp(api, "")

	restore := stubInputs([]string{"alice", "a@x.com"}, []byte("secret"))
	defer restore()

	if err := a.Register(context.Background()); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if strings.Join(api.regArgs, ",") != "alice,a@x.com,secret" {
		t.Fatalf("Register args mismatch: %v", api.regArgs)
	}
	if !a.isLoggedIn() || a.getStatus() != "(alice)" {
		t.Fatalf("expected logged in as alice, status %q", a.getStatus())
	}
	if !strings.Contains(out.String(), "Welcome, alice!") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestLogin_Failure(t *testing.T) {
	api := &fakeAPI{authErr: errors.New("unauthorized: 邮箱或密码错误")}
	a, out := newTestApp(api, "")

	restore := stubInputs([]string{"a@x.com"}, []byte("bad"))
	defer restore()

	if err := a.Login(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if a.isLoggedIn() {
		t.Fatal("must not be logged in")
	}
	if !strings.Contains(out.String(), "Login unsuccessful") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestLoginLogout(t *testing.T) {
	api := &fakeAPI{}
	a, _ := newTestApp(api, "")

	restore := stubInputs([]string{"a@x.com"}, []byte("pw"))
	defer restore()

	if err := a.Login(context.Background()); err != nil {
		t.Fatalf("Login err: %v", err)
	}
	if strings.Join(api.loginArgs, ",") != "a@x.com,pw" {
		t.Fatalf("Login args mismatch: %v", api.loginArgs)
	}

	if err := a.Logout(context.Background()); err != nil {
		t.Fatalf("Logout err: %v", err)
	}
	if a.isLoggedIn() || api.token != "" {
		t.Fatal("logout must clear the session")
	}
	if a.getStatus() != "" {
		t.Fatalf("want empty status, got %q", a.getStatus())
	}
}
