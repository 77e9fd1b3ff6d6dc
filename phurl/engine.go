package phurl

import (
	"context"
	"errors"
	"fmt"
)

const (
	ApplicationClass = "PhabricatorPhurlApplication"

	// ParamAuthorPHIDs is the saved-query parameter holding author PHIDs.
	ParamAuthorPHIDs = "authorPHIDs"

	UserDatasource = "PhabricatorPeopleUserFunctionDatasource"

	NoDataString = "No URLs found."
)

var ErrUnknownBuiltinQuery = errors.New("unknown builtin query")

// Viewer is the user a search runs for.
type Viewer interface {
	PHID() string
	// LoadHandles prepares handles for later RenderHandle calls.
	LoadHandles(phids []string)
	RenderHandle(phid string) string
}

// Application is the installed application the engine belongs to.
type Application struct {
	Name     string
	FontIcon string
}

type SearchField struct {
	Key        string
	Label      string
	Datasource string
}

type BuiltinQuery struct {
	Key  string
	Name string
}

// SavedQuery is a named parameter set.
type SavedQuery struct {
	QueryKey   string
	Parameters map[string][]string
}

func NewSavedQuery(key string) *SavedQuery {
	return &SavedQuery{QueryKey: key, Parameters: make(map[string][]string)}
}

func (query *SavedQuery) SetParameter(key string, values []string) {
	query.Parameters[key] = values
}

func (query *SavedQuery) Parameter(key string) []string {
	return query.Parameters[key]
}

type ObjectItem struct {
	ObjectPHID string
	Header     string
}

// ResultView is a rendered result list.
type ResultView struct {
	Items        []ObjectItem
	NoDataString string
}

type Button struct {
	Tag   string
	Text  string
	Href  string
	Color string
}

// InfoView is the body shown to a user who has no URLs yet.
type InfoView struct {
	Icon        string
	Title       string
	Description string
	Buttons     []Button
}

var builtinQueries = []BuiltinQuery{
	{Key: "authored", Name: "Authored"},
	{Key: "all", Name: "All URLs"},
}

type SearchEngine struct{}

func NewSearchEngine() *SearchEngine {
	return &SearchEngine{}
}

func (*SearchEngine) ResultTypeDescription() string {
	return "Shortened URLs"
}

func (*SearchEngine) ApplicationClassName() string {
	return ApplicationClass
}

func (*SearchEngine) NewQuery() *URLQuery {
	return NewURLQuery()
}

func (*SearchEngine) ShouldShowOrderField() bool {
	return true
}

func (*SearchEngine) CustomSearchFields() []SearchField {
	return []SearchField{
		{Key: ParamAuthorPHIDs, Label: "Created By", Datasource: UserDatasource},
	}
}

func (engine *SearchEngine) BuildQueryFromParameters(params map[string][]string) *URLQuery {
	query := engine.NewQuery()
	if authors := params[ParamAuthorPHIDs]; len(authors) > 0 {
		query.WithAuthorPHIDs(authors)
	}
	return query
}

func (*SearchEngine) URI(path string) string {
	return "/phurl/" + path
}

// BuiltinQueries returns the built-in queries in menu order.
func (*SearchEngine) BuiltinQueries() []BuiltinQuery {
	return append([]BuiltinQuery(nil), builtinQueries...)
}

func (engine *SearchEngine) BuildSavedQueryFromBuiltin(key string, viewer Viewer) (*SavedQuery, error) {
	query := NewSavedQuery(key)

	switch key {
	case "authored":
		query.SetParameter(ParamAuthorPHIDs, []string{viewer.PHID()})
		return query, nil
	case "all":
		return query, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBuiltinQuery, key)
}

// Search runs saved against store.
func (engine *SearchEngine) Search(ctx context.Context, store Store, saved *SavedQuery) ([]*URL, error) {
	return engine.BuildQueryFromParameters(saved.Parameters).Execute(ctx, store)
}

func (*SearchEngine) RenderResultList(urls []*URL, viewer Viewer) ResultView {
	authors := make([]string, 0, len(urls))
	for _, url := range urls {
		authors = append(authors, url.AuthorPHID)
	}
	viewer.LoadHandles(authors)

	view := ResultView{NoDataString: NoDataString}
	for _, url := range urls {
		view.Items = append(view.Items, ObjectItem{
			ObjectPHID: url.PHID,
			Header:     viewer.RenderHandle(url.PHID),
		})
	}
	return view
}

func (engine *SearchEngine) NewUserBody(app Application) InfoView {
	return InfoView{
		Icon:        app.FontIcon,
		Title:       fmt.Sprintf("Welcome to %s", app.Name),
		Description: "Create reusable, memorable, shorter URLs for easy accessibility.",
		Buttons: []Button{{
			Tag:   "a",
			Text:  "Shorten a URL",
			Href:  engine.URI("url/create/"),
			Color: "green",
		}},
	}
}
