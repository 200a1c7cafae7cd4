package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/miniblog/internal/server/models"
)

// Posts lists the public catalog, optionally narrowed to one category.
func (a *App) Posts(ctx context.Context, category string) error {
	list, err := a.client.Posts(ctx, category)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}
	a.printPosts(list)
	return nil
}

// Mine lists the posts owned by the signed-in user.
func (a *App) Mine(ctx context.Context) error {
	list, err := a.client.MyPosts(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}
	a.printPosts(list)
	return nil
}

func (a *App) printPosts(list []*models.Article) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No posts")
		return
	}
	for _, p := range list {
		fmt.Fprintf(a.out, "%s  [%s] %s, %s (%s)\n", p.ID, p.Category, p.Title, p.Author, p.ReadTime)
	}
}

// Upload sends an image file to object storage and prints its public URL.
// kind is "article" or "avatar".
func (a *App) Upload(ctx context.Context, kind, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		err := errors.New("only image files can be uploaded")
		fmt.Fprintf(a.out, "error: %s (%s)\n", err.Error(), contentType)
		return err
	}

	url, err := a.client.Upload(ctx, kind, contentType, bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}
