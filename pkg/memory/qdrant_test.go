package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQdrantEnsureCollection(t *testing.T) {
	Convey("Given a qdrant store and a server that knows the collection", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"result":{"status":"green"}}`)
		}))
		defer ts.Close()

		store := NewQdrantStore(ts.URL)
		err := store.EnsureCollection(context.Background(), "memory_orb_u1", 1024)

		Convey("Then no create call is needed", func() {
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a server without the collection", t, func() {
		var created struct {
			Vectors struct {
				Size     int    `json:"size"`
				Distance string `json:"distance"`
			} `json:"vectors"`
		}

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			_ = json.NewDecoder(r.Body).Decode(&created)
			fmt.Fprint(w, `{"result":true}`)
		}))
		defer ts.Close()

		store := NewQdrantStore(ts.URL)
		err := store.EnsureCollection(context.Background(), "memory_orb_u1", 1024)

		Convey("Then the collection is created with dimension and cosine distance", func() {
			So(err, ShouldBeNil)
			So(created.Vectors.Size, ShouldEqual, 1024)
			So(created.Vectors.Distance, ShouldEqual, "Cosine")
		})
	})
}

func TestQdrantUpsert(t *testing.T) {
	Convey("Given a qdrant store and a test server", t, func() {
		var body struct {
			Points []struct {
				ID      string         `json:"id"`
				Vector  []float32      `json:"vector"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		}

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&body)
			fmt.Fprint(w, `{"result":{"status":"acknowledged"}}`)
		}))
		defer ts.Close()

		store := NewQdrantStore(ts.URL)
		err := store.Upsert(context.Background(), "memory_orb_u1", []Point{{
			ID:      "123",
			Vector:  []float32{0.1, 0.2},
			Payload: map[string]any{"conversation": "USER: hi"},
		}})

		Convey("Then the point is sent as an upsert", func() {
			So(err, ShouldBeNil)
			So(len(body.Points), ShouldEqual, 1)
			So(body.Points[0].ID, ShouldEqual, "123")
			So(body.Points[0].Payload["conversation"], ShouldEqual, "USER: hi")
		})
	})

	Convey("Given a server that rejects the upsert", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer ts.Close()

		store := NewQdrantStore(ts.URL)
		err := store.Upsert(context.Background(), "memory_orb_u1", []Point{{ID: "123"}})

		Convey("Then the status surfaces as an error", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestQdrantSearch(t *testing.T) {
	Convey("Given a qdrant store and a test server for search", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"result":[{"id":"1","score":0.91,"payload":{"conversation_summary":"a"}},{"id":"2","score":0.42,"payload":{"conversation_summary":"b"}}]}`)
		}))
		defer ts.Close()

		store := NewQdrantStore(ts.URL)
		points, err := store.Search(context.Background(), "memory_orb_u1", []float32{0.1}, 5)

		Convey("Then the scored points should be returned in order", func() {
			So(err, ShouldBeNil)
			So(len(points), ShouldEqual, 2)
			So(points[0].ID, ShouldEqual, "1")
			So(points[0].Score, ShouldAlmostEqual, 0.91)
			So(points[1].Payload["conversation_summary"], ShouldEqual, "b")
		})
	})
}

func TestQdrantScroll(t *testing.T) {
	Convey("Given a qdrant store and a test server for scroll", t, func() {
		var body struct {
			Filter struct {
				Must []struct {
					Key   string `json:"key"`
					Match struct {
						Text string `json:"text"`
					} `json:"match"`
				} `json:"must"`
			} `json:"filter"`
		}

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&body)
			fmt.Fprint(w, `{"result":{"points":[{"id":"1","payload":{"conversation":"USER: gophers"}}]}}`)
		}))
		defer ts.Close()

		store := NewQdrantStore(ts.URL)
		points, err := store.Scroll(context.Background(), "memory_orb_u1", "gophers", 5)

		Convey("Then the filter targets the conversation text", func() {
			So(err, ShouldBeNil)
			So(len(body.Filter.Must), ShouldEqual, 1)
			So(body.Filter.Must[0].Key, ShouldEqual, "conversation")
			So(body.Filter.Must[0].Match.Text, ShouldEqual, "gophers")
		})

		Convey("And the matched points carry no native score", func() {
			So(len(points), ShouldEqual, 1)
			So(points[0].Score, ShouldEqual, 0)
		})
	})
}
