package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel_hub/internal/app"
	"hostel_hub/internal/domain"
)

func loadedCatalog(t *testing.T, store *fakeStore) *app.Catalog {
	t.Helper()
	c := app.NewCatalog(store, nil, time.Minute)
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestSearchController_ResetRestoresFullCatalog(t *testing.T) {
	sc := app.NewSearchController(loadedCatalog(t, newFakeStore(catalogFixture()...)))
	assert.Len(t, sc.State().Results, 4)

	sc.SetSearchTerm("olympia")
	st := sc.SetFilter(domain.FilterSpec{Amenities: []string{"Pool"}})
	assert.Empty(t, st.Results)

	st = sc.Reset()
	assert.Equal(t, "", st.Term)
	assert.Equal(t, domain.FilterSpec{}, st.Filter)
	assert.Equal(t, []string{"h-olympia", "h-nana", "h-kare", "h-empty"}, hostelIDs(st.Results))
}

func TestSearchController_SetFilterReplacesWholesale(t *testing.T) {
	sc := app.NewSearchController(loadedCatalog(t, newFakeStore(catalogFixture()...)))
	sc.SetFilter(domain.FilterSpec{University: ptr("Kyambogo University")})
	st := sc.SetFilter(domain.FilterSpec{Amenities: []string{"Gym"}})
	assert.Nil(t, st.Filter.University, "previous fields are not merged")
	assert.Equal(t, []string{"h-nana"}, hostelIDs(st.Results))
}

func TestSearchController_TermAndFilterCompose(t *testing.T) {
	sc := app.NewSearchController(loadedCatalog(t, newFakeStore(catalogFixture()...)))
	sc.SetFilter(domain.FilterSpec{Amenities: []string{"Security"}})
	st := sc.SetSearchTerm("kare")
	assert.Equal(t, []string{"h-kare"}, hostelIDs(st.Results))
	assert.Equal(t, "kare", st.Term)
}

func TestSearchController_LoadErrorYieldsEmptyResults(t *testing.T) {
	store := newFakeStore(catalogFixture()...)
	store.listErr = errors.New("connection refused")
	c := app.NewCatalog(store, nil, time.Minute)
	err := c.Load(context.Background())

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	st := app.NewSearchController(c).State()
	assert.NotNil(t, st.Results)
	assert.Empty(t, st.Results)
	assert.Contains(t, st.LoadError, "connection refused")
}

func TestControllers_OnePerSession(t *testing.T) {
	cs := app.NewControllers(loadedCatalog(t, newFakeStore(catalogFixture()...)))
	a := cs.For("s1")
	a.SetSearchTerm("nana")
	assert.Same(t, a, cs.For("s1"))
	assert.Len(t, cs.For("s2").State().Results, 4)

	cs.Drop("s1")
	assert.Empty(t, cs.For("s1").State().Term)
}

func TestControllers_SeeRoomBookedBySubmission(t *testing.T) {
	store := newFakeStore(catalogFixture()...)
	c := loadedCatalog(t, store)
	cs := app.NewControllers(c)
	sc := cs.For("s1")
	sc.SetSearchTerm("olympia")

	r := catalogFixture()[0].Rooms[0]
	_, err := app.NewBookingFlow(store, c, nil).Submit(app.WithSession(context.Background(), student), r, validForm())
	require.NoError(t, err)

	st := sc.State()
	require.Len(t, st.Results, 1)
	assert.Equal(t, domain.RoomBooked, st.Results[0].Rooms[0].Status)
	assert.Equal(t, "olympia", st.Term, "refresh keeps the session's term")
}

func TestControllers_SurfaceReloadFailure(t *testing.T) {
	store := newFakeStore(catalogFixture()...)
	c := loadedCatalog(t, store)
	sc := app.NewControllers(c).For("s1")
	require.Len(t, sc.State().Results, 4)

	store.listErr = errors.New("connection refused")
	require.Error(t, c.Load(context.Background()))

	st := sc.State()
	assert.Empty(t, st.Results)
	assert.Contains(t, st.LoadError, "connection refused")
}
