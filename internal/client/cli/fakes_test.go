package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/miniblog/internal/server/models"
)

func stubInputs(t *testing.T, lines []string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(lines) {
			return "", io.EOF
		}
		i++
		return lines[i-1], nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeClient struct {
	regName, regEmail string
	regPass           []byte
	regErr            error

	loginEmail string
	loginPass  []byte
	loginErr   error

	logoutCalled bool
	logoutErr    error

	me    *models.PublicUser
	meErr error

	category string
	posts    []*models.Article
	mine     []*models.Article
	postsErr error

	uploadKind, uploadCT, uploadBody string
	uploadURL                        string
	uploadErr                        error
}

func (f *fakeClient) Register(_ context.Context, name, email string, pass []byte) (*models.PublicUser, error) {
	f.regName, f.regEmail, f.regPass = name, email, append([]byte(nil), pass...)
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.PublicUser{ID: "u1", Name: name, Email: email}, nil
}

func (f *fakeClient) Login(_ context.Context, email string, pass []byte) (*models.PublicUser, error) {
	f.loginEmail, f.loginPass = email, append([]byte(nil), pass...)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.PublicUser{ID: "u1", Name: "Ann", Email: email}, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}

func (f *fakeClient) Me(context.Context) (*models.PublicUser, error) { return f.me, f.meErr }

func (f *fakeClient) Posts(_ context.Context, category string) ([]*models.Article, error) {
	f.category = category
	return f.posts, f.postsErr
}

func (f *fakeClient) MyPosts(context.Context) ([]*models.Article, error) { return f.mine, f.postsErr }

func (f *fakeClient) Upload(_ context.Context, kind, contentType string, body io.Reader) (string, error) {
	b, _ := io.ReadAll(body)
	f.uploadKind, f.uploadCT, f.uploadBody = kind, contentType, string(b)
	return f.uploadURL, f.uploadErr
}

func newTestApp(f *fakeClient, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{client: f, reader: bufio.NewReader(strings.NewReader(input)), out: &out}, &out
}
