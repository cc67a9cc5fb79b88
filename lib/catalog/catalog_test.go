package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"indego-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const portalPage = `<!DOCTYPE html>
<html>
<body>
	<h1>Station Data</h1>
	<ul>
		<li><a href="https://example.com/stations.csv">Station Table</a></li>
	</ul>
	<h1>Trip Data</h1>
	<div class="downloads">
		<ul>
			<li><a href="https://example.com/2023-q4.zip">2023 Q4 Trip Data</a></li>
			<li><a href="https://example.com/2023-q3.zip">2023 Q3 Trip Data</a></li>
			<li><a href="https://example.com/notes.pdf">Release notes</a></li>
		</ul>
	</div>
</body>
</html>`

func TestDiscover(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:catalog")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(portalPage))
	}))
	defer server.Close()

	c := New(Options{PageUrl: server.URL})
	entries, err := c.Discover(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []Entry{
		{Label: "2023 Q4 Trip Data", Url: "https://example.com/2023-q4.zip"},
		{Label: "2023 Q3 Trip Data", Url: "https://example.com/2023-q3.zip"},
	}, entries)
}

func TestDiscoverMissingHeading(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:catalog")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>Something Else</h1></body></html>"))
	}))
	defer server.Close()

	c := New(Options{PageUrl: server.URL})
	_, err := c.Discover(context.Background())
	require.ErrorIs(t, err, ErrDiscovery)
}

func TestDiscoverUnreachable(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:catalog")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New(Options{PageUrl: server.URL})
	_, err := c.Discover(context.Background())
	require.ErrorIs(t, err, ErrDiscovery)
}

func TestDiscoverNoListAfterHeading(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:catalog")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>Trip Data</h1><p>coming soon</p></body></html>"))
	}))
	defer server.Close()

	c := New(Options{PageUrl: server.URL})
	_, err := c.Discover(context.Background())
	require.ErrorIs(t, err, ErrDiscovery)
}
