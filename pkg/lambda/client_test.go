package lambda

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
)

func newRedirectMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write([]byte(r.Method + ":" + string(body) + ":" + r.URL.RawQuery))
	})
	mux.HandleFunc("/see-other", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusSeeOther)
	})
	mux.HandleFunc("/temporary", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	return mux
}

func TestClient_Redirects(t *testing.T) {
	ctx := context.Background()

	t.Run("SeeOtherSwitchesToGet", func(t *testing.T) {
		client := NewClient(ctx, newRedirectMux())
		defer client.Close()

		resp, err := client.Post("/see-other", RequestOptions{FollowRedirects: true, Body: []byte("data")})
		if err != nil {
			t.Fatalf("Post failed: %v", err)
		}
		if resp.Text() != "GET::" {
			t.Errorf("Expected body to be dropped on 303, got %q", resp.Text())
		}
	})

	t.Run("TemporaryKeepsMethodAndBody", func(t *testing.T) {
		client := NewClient(ctx, newRedirectMux())
		defer client.Close()

		resp, err := client.Post("/temporary", RequestOptions{FollowRedirects: true, Body: []byte("data")})
		if err != nil {
			t.Fatalf("Post failed: %v", err)
		}
		if resp.Text() != "POST:data:" {
			t.Errorf("Expected method and body to be kept on 307, got %q", resp.Text())
		}
	})

	t.Run("NotFollowing", func(t *testing.T) {
		client := NewClient(ctx, newRedirectMux())
		defer client.Close()

		resp, err := client.Get("/see-other", RequestOptions{})
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if resp.StatusCode != http.StatusSeeOther {
			t.Errorf("Expected 303, got %d", resp.StatusCode)
		}
	})

	t.Run("Loop", func(t *testing.T) {
		client := NewClient(ctx, newRedirectMux())
		defer client.Close()
		client.SetMaxRedirects(3)

		_, err := client.Get("/loop", RequestOptions{FollowRedirects: true})
		if !errors.Is(err, ErrTooManyRedirects) {
			t.Errorf("Expected ErrTooManyRedirects, got %v", err)
		}
	})
}

func TestClient_Query(t *testing.T) {
	client := NewClient(context.Background(), newRedirectMux())
	defer client.Close()

	resp, err := client.Get("/target?a=1", RequestOptions{Query: map[string][]string{"b": {"2"}}})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.Text() != "GET::a=1&b=2" {
		t.Errorf("Expected merged query, got %q", resp.Text())
	}
}

func TestClient_Do(t *testing.T) {
	client := NewClient(context.Background(), newRedirectMux())
	defer client.Close()

	for _, method := range []string{"get", "POST", "Put", "patch", "delete", "options", "trace"} {
		resp, err := client.Do(method, "/target", RequestOptions{})
		if err != nil {
			t.Errorf("Do(%s) failed: %v", method, err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Do(%s) returned %d", method, resp.StatusCode)
		}
	}

	if _, err := client.Do("brew", "/target", RequestOptions{}); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("Expected ErrUnknownMethod, got %v", err)
	}
}

func TestClient_Closed(t *testing.T) {
	var used *Client
	err := WithClient(context.Background(), newRedirectMux(), func(c *Client) error {
		used = c
		_, err := c.Get("/target", RequestOptions{})
		return err
	})
	if err != nil {
		t.Fatalf("WithClient failed: %v", err)
	}

	if _, err := used.Get("/target", RequestOptions{}); !errors.Is(err, ErrClientClosed) {
		t.Errorf("Expected ErrClientClosed, got %v", err)
	}
}

func TestClient_DoubleSlashPath(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path + "|" + r.URL.RawQuery
		w.WriteHeader(http.StatusNotFound)
	})

	client := NewClient(context.Background(), handler)
	defer client.Close()

	if _, err := client.Get("//evil.com/x?a=1", RequestOptions{}); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if seen != "//evil.com/x|a=1" {
		t.Errorf("Expected path to reach the handler unchanged, got %q", seen)
	}
}
