package phurl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testViewer struct {
	phid   string
	loaded []string
}

func (v *testViewer) PHID() string {
	return v.phid
}

func (v *testViewer) LoadHandles(phids []string) {
	v.loaded = append(v.loaded, phids...)
}

func (v *testViewer) RenderHandle(phid string) string {
	return "handle:" + phid
}

type recordingStore struct {
	query *URLQuery
}

func (s *recordingStore) FindURLs(ctx context.Context, query *URLQuery) ([]*URL, error) {
	s.query = query
	return nil, nil
}

func TestSearchEngineDescription(t *testing.T) {
	engine := NewSearchEngine()

	assert.Equal(t, "Shortened URLs", engine.ResultTypeDescription())
	assert.Equal(t, "PhabricatorPhurlApplication", engine.ApplicationClassName())
	assert.True(t, engine.ShouldShowOrderField())
	assert.Equal(t, "/phurl/", engine.URI(""))
	assert.Equal(t, "/phurl/query/all/", engine.URI("query/all/"))

	fields := engine.CustomSearchFields()
	require.Len(t, fields, 1)
	assert.Equal(t, SearchField{
		Key:        "authorPHIDs",
		Label:      "Created By",
		Datasource: "PhabricatorPeopleUserFunctionDatasource",
	}, fields[0])
}

func TestBuildQueryFromParameters(t *testing.T) {
	engine := NewSearchEngine()

	query := engine.BuildQueryFromParameters(map[string][]string{})
	assert.Nil(t, query.AuthorPHIDs())

	query = engine.BuildQueryFromParameters(map[string][]string{
		ParamAuthorPHIDs: {"PHID-USER-a", "PHID-USER-b"},
	})
	assert.Equal(t, []string{"PHID-USER-a", "PHID-USER-b"}, query.AuthorPHIDs())

	query = engine.BuildQueryFromParameters(map[string][]string{ParamAuthorPHIDs: {}})
	assert.Nil(t, query.AuthorPHIDs(), "empty author list should not constrain")
}

func TestBuiltinQueries(t *testing.T) {
	engine := NewSearchEngine()
	viewer := &testViewer{phid: "PHID-USER-alice"}

	assert.Equal(t, []BuiltinQuery{
		{Key: "authored", Name: "Authored"},
		{Key: "all", Name: "All URLs"},
	}, engine.BuiltinQueries())

	authored, err := engine.BuildSavedQueryFromBuiltin("authored", viewer)
	require.NoError(t, err)
	assert.Equal(t, "authored", authored.QueryKey)
	assert.Equal(t, []string{"PHID-USER-alice"}, authored.Parameter(ParamAuthorPHIDs))

	all, err := engine.BuildSavedQueryFromBuiltin("all", viewer)
	require.NoError(t, err)
	assert.Empty(t, all.Parameters)

	_, err = engine.BuildSavedQueryFromBuiltin("open", viewer)
	assert.True(t, errors.Is(err, ErrUnknownBuiltinQuery))
}

func TestSearchAppliesSavedQuery(t *testing.T) {
	engine := NewSearchEngine()
	viewer := &testViewer{phid: "PHID-USER-alice"}
	store := &recordingStore{}

	saved, err := engine.BuildSavedQueryFromBuiltin("authored", viewer)
	require.NoError(t, err)

	_, err = engine.Search(context.Background(), store, saved)
	require.NoError(t, err)
	require.NotNil(t, store.query)
	assert.Equal(t, []string{"PHID-USER-alice"}, store.query.AuthorPHIDs())
	assert.Equal(t, OrderNewest, store.query.Order())
}

func TestRenderResultList(t *testing.T) {
	engine := NewSearchEngine()
	viewer := &testViewer{phid: "PHID-USER-alice"}

	view := engine.RenderResultList([]*URL{
		{PHID: "PHID-PHRL-1", AuthorPHID: "PHID-USER-alice"},
		{PHID: "PHID-PHRL-2", AuthorPHID: "PHID-USER-bob"},
	}, viewer)

	assert.Equal(t, "No URLs found.", view.NoDataString)
	assert.Equal(t, []ObjectItem{
		{ObjectPHID: "PHID-PHRL-1", Header: "handle:PHID-PHRL-1"},
		{ObjectPHID: "PHID-PHRL-2", Header: "handle:PHID-PHRL-2"},
	}, view.Items)
	assert.Equal(t, []string{"PHID-USER-alice", "PHID-USER-bob"}, viewer.loaded)

	empty := engine.RenderResultList(nil, viewer)
	assert.Empty(t, empty.Items)
	assert.Equal(t, NoDataString, empty.NoDataString)
}

func TestNewUserBody(t *testing.T) {
	body := NewSearchEngine().NewUserBody(Application{Name: "Phurl", FontIcon: "fa-compress"})

	assert.Equal(t, "fa-compress", body.Icon)
	assert.Equal(t, "Welcome to Phurl", body.Title)
	assert.Equal(t, "Create reusable, memorable, shorter URLs for easy accessibility.", body.Description)
	assert.Equal(t, []Button{{
		Tag:   "a",
		Text:  "Shorten a URL",
		Href:  "/phurl/url/create/",
		Color: "green",
	}}, body.Buttons)
}
