package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/fedash/pkg/datafed"
	"tableflip.dev/fedash/pkg/datafed/fake"
	"tableflip.dev/fedash/pkg/session"
)

func newFake() *fake.Client {
	f := fake.New()
	f.Users["alice"] = "secret"
	f.ProjectList = []datafed.Project{{ID: "p/alpha", Title: "Alpha"}, {ID: "p/beta", Title: "Beta"}}
	f.Collections["p/alpha"] = []string{"c/1", "c/2"}
	f.Collections["p/beta"] = []string{}
	return f
}

func loggedIn(t *testing.T) (*Controller, *fake.Client) {
	t.Helper()
	f := newFake()
	c := New(f)
	require.NoError(t, c.Login(context.Background(), "alice", "secret"))
	f.Reset()
	return c, f
}

func TestLogin(t *testing.T) {
	f := newFake()
	c := New(f)

	require.NoError(t, c.Login(context.Background(), "alice", "secret"))
	s := c.Session()
	assert.True(t, s.Authenticated)
	assert.Equal(t, "alice", s.CurrentUser)
	assert.Equal(t, "u/alice", s.CurrentContext)
	assert.Equal(t, []string{"p/alpha", "p/beta"}, s.AvailableContexts)
	assert.Equal(t, "p/alpha", s.SelectedContext)
	assert.Equal(t, []string{"c/1", "c/2"}, s.AvailableCollections)
	assert.Equal(t, "c/1", s.SelectedCollection)
	assert.Equal(t, "Login Successful!", s.Status)
	assert.False(t, s.LoginRequested)
	assert.NoError(t, c.Err())
}

func TestLoginRejected(t *testing.T) {
	f := newFake()
	c := New(f)

	err := c.Login(context.Background(), "alice", "nope")
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.True(t, IsRemote(err))

	s := c.Session()
	assert.False(t, s.Authenticated)
	assert.Equal(t, session.NotLoggedIn, s.CurrentUser)
	assert.Equal(t, "Invalid username or password: invalid credentials", s.Status)
}

func TestLoginValidation(t *testing.T) {
	f := newFake()
	c := New(f)

	err := c.Login(context.Background(), "alice", "")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Invalid username or password: Username and password are required", c.Session().Status)
	assert.Zero(t, f.Calls(""))
}

func TestLoginWithProjectFailure(t *testing.T) {
	f := newFake()
	f.Fail(fake.OpProjects, errors.New("projects unavailable"))
	c := New(f)

	require.NoError(t, c.Login(context.Background(), "alice", "secret"))
	s := c.Session()
	assert.True(t, s.Authenticated)
	assert.Equal(t, []string{"Error: projects unavailable"}, s.AvailableContexts)
	assert.Equal(t, s.AvailableContexts[0], s.SelectedContext)
	assert.Equal(t, 1, f.Calls(fake.OpCollectionItems))
	assert.Equal(t, "Login Successful!", s.Status)
}

func TestLoginSelectsFirstContext(t *testing.T) {
	tests := map[string]struct {
		projects []datafed.Project
		fail     error
	}{
		"listed":  {projects: []datafed.Project{{ID: "p/alpha"}, {ID: "p/beta"}}},
		"failed":  {fail: errors.New("projects unavailable")},
		"no list": {},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFake()
			f.ProjectList = tt.projects
			if tt.fail != nil {
				f.Fail(fake.OpProjects, tt.fail)
			}
			c := New(f)

			require.NoError(t, c.Login(context.Background(), "alice", "secret"))
			s := c.Session()
			if len(s.AvailableContexts) == 0 {
				assert.Empty(t, s.SelectedContext)
				return
			}
			assert.Equal(t, s.AvailableContexts[0], s.SelectedContext)
		})
	}
}

func TestLoginWithCollectionFailure(t *testing.T) {
	f := newFake()
	f.Fail(fake.OpCollectionItems, errors.New("listing failed"))
	c := New(f)

	require.NoError(t, c.Login(context.Background(), "alice", "secret"))
	s := c.Session()
	assert.Equal(t, "p/alpha", s.SelectedContext)
	assert.Equal(t, []string{"Error: listing failed"}, s.AvailableCollections)
	assert.Empty(t, s.SelectedCollection)
	assert.Error(t, c.Err())
}

func TestSelectContext(t *testing.T) {
	c, f := loggedIn(t)

	require.NoError(t, c.SelectContext(context.Background(), "p/beta"))
	s := c.Session()
	assert.Equal(t, "p/beta", s.SelectedContext)
	assert.Empty(t, s.AvailableCollections)
	assert.Empty(t, s.SelectedCollection)
	assert.Equal(t, 1, f.Calls(fake.OpCollectionItems))

	err := c.SelectContext(context.Background(), "p/unknown")
	assert.ErrorIs(t, err, session.ErrNotAvailable)
	assert.Equal(t, "p/beta", c.Session().SelectedContext)
}

func TestSelectCollection(t *testing.T) {
	c, f := loggedIn(t)

	require.NoError(t, c.SelectCollection("c/2"))
	assert.Equal(t, "c/2", c.Session().SelectedCollection)
	assert.ErrorIs(t, c.SelectCollection("c/404"), session.ErrNotAvailable)
	assert.Zero(t, f.Calls(""))
}

func TestLogout(t *testing.T) {
	c, f := loggedIn(t)

	c.Logout(context.Background())
	s := c.Session()
	assert.False(t, s.Authenticated)
	assert.Equal(t, session.NotLoggedIn, s.CurrentUser)
	assert.Equal(t, session.NoContext, s.CurrentContext)
	assert.Empty(t, s.AvailableContexts)
	assert.Equal(t, "Logged out successfully!", s.Status)
	assert.Equal(t, session.LoginForm{}, c.Forms().Login)
	assert.Equal(t, 1, f.Calls(fake.OpLogout))

	// logging out twice does not call the remote side again
	c.Logout(context.Background())
	assert.Equal(t, 1, f.Calls(fake.OpLogout))
}

func TestLogoutIgnoresRemoteFailure(t *testing.T) {
	c, f := loggedIn(t)
	f.Fail(fake.OpLogout, errors.New("gone"))

	c.Logout(context.Background())
	assert.False(t, c.Session().Authenticated)
	assert.NoError(t, c.Err())
}

func TestCreateRecord(t *testing.T) {
	c, f := loggedIn(t)

	r := c.CreateRecord(context.Background(), "run 7", `{"t":4}`, "")
	require.True(t, r.OK(), r.Message)
	assert.Contains(t, r.Message, "Record created: ")
	assert.Contains(t, r.Message, `"id":"d/1001"`)
	assert.Equal(t, "c/1", f.Records["d/1001"].ParentID)

	// the selected context is applied before the call
	h := f.History()
	require.Len(t, h, 2)
	assert.Equal(t, fake.Call{Op: fake.OpSetContext, Args: []string{"p/alpha"}}, h[0])
	assert.Equal(t, fake.OpCreateRecord, h[1].Op)

	r = c.CreateRecord(context.Background(), "run 8", `{}`, "c/2")
	require.True(t, r.OK())
	assert.Equal(t, "c/2", f.Records["d/1002"].ParentID)
	assert.Equal(t, r, c.Result())
}

func TestValidationMakesNoCalls(t *testing.T) {
	c, f := loggedIn(t)
	ctx := context.Background()

	results := []session.Result{
		c.CreateRecord(ctx, "", "{}", ""),
		c.ReadRecord(ctx, ""),
		c.UpdateRecord(ctx, "1", ""),
		c.DeleteRecord(ctx, ""),
		c.TransferData(ctx, "1", ""),
	}
	for _, r := range results {
		assert.Equal(t, session.KindWarning, r.Kind, r.Message)
	}
	assert.True(t, IsValidation(c.Err()))
	assert.Zero(t, f.Calls(""))
}

func TestReadRecord(t *testing.T) {
	c, f := loggedIn(t)
	f.AddRecord(&datafed.Record{ID: "d/42", Title: "answer", Size: 12})

	r := c.ReadRecord(context.Background(), "42")
	require.True(t, r.OK())
	assert.Contains(t, r.Message, "**Record Data:**")
	assert.Contains(t, r.Message, "```json")
	fields, ok := r.Payload.(datafed.Fields)
	require.True(t, ok)
	assert.Equal(t, "answer", fields.GetString("title"))
	assert.Equal(t, int64(12), fields.Values["size"])

	r = c.ReadRecord(context.Background(), "43")
	assert.Equal(t, session.KindError, r.Kind)
	assert.Equal(t, "Failed to read record: d/43: record not found", r.Message)
	assert.True(t, IsRemote(c.Err()))
}

func TestUpdateRecord(t *testing.T) {
	c, f := loggedIn(t)
	f.AddRecord(&datafed.Record{ID: "d/42", Title: "answer"})

	r := c.UpdateRecord(context.Background(), "d/42", `{"v":2}`)
	require.True(t, r.OK())
	assert.Contains(t, r.Message, "Record updated: ")
	assert.Equal(t, `{"v":2}`, f.Records["d/42"].Metadata)
}

func TestDeleteRecord(t *testing.T) {
	c, f := loggedIn(t)
	f.AddRecord(&datafed.Record{ID: "d/42"})

	r := c.DeleteRecord(context.Background(), "42")
	assert.Equal(t, session.Result{Kind: session.KindSuccess, Message: "Record successfully deleted"}, r)
	assert.Empty(t, f.RecordIDs())

	f.Fail(fake.OpDeleteRecord, errors.New("permission denied"))
	r = c.DeleteRecord(context.Background(), "42")
	assert.Equal(t, "Failed to delete record: permission denied", r.Message)
}

func TestTransferData(t *testing.T) {
	c, f := loggedIn(t)
	f.AddRecord(&datafed.Record{ID: "d/42", Title: "answer", Metadata: `{"a":1}`})

	r := c.TransferData(context.Background(), "42", "c/2")
	require.True(t, r.OK(), r.Message)
	assert.Equal(t, "Data transferred to new record ID: d/1001", r.Message)
	assert.Equal(t, []string{"d/1001"}, f.RecordIDs())
	assert.Equal(t, "answer", f.Records["d/1001"].Title)
	assert.Equal(t, `{"a":1}`, f.Records["d/1001"].Metadata)
}

func TestTransferPartialFailure(t *testing.T) {
	c, f := loggedIn(t)
	f.AddRecord(&datafed.Record{ID: "d/42", Title: "answer"})
	f.Fail(fake.OpMoveRecord, errors.New("move refused"))

	r := c.TransferData(context.Background(), "d/42", "c/2")
	assert.Equal(t, "Failed to transfer data: move refused", r.Message)
	assert.True(t, IsPartial(c.Err()))

	var pf *PartialFailure
	require.ErrorAs(t, c.Err(), &pf)
	assert.Equal(t, "d/1001", pf.CreatedID)
	// nothing is rolled back
	assert.Equal(t, []string{"d/1001", "d/42"}, f.RecordIDs())
}

func TestTransferSourceMissing(t *testing.T) {
	c, f := loggedIn(t)

	r := c.TransferData(context.Background(), "9", "c/2")
	assert.Equal(t, session.KindError, r.Kind)
	assert.Zero(t, f.Calls(fake.OpCreateRecord))
}

func TestOperationsWithoutContext(t *testing.T) {
	f := newFake()
	f.ProjectList = nil
	c := New(f)
	require.NoError(t, c.Login(context.Background(), "alice", "secret"))
	f.Reset()

	r := c.CreateRecord(context.Background(), "t", "{}", "")
	require.True(t, r.OK())
	assert.Zero(t, f.Calls(fake.OpSetContext))
	assert.Equal(t, "", f.Records["d/1001"].ParentID)
}

func TestListProjects(t *testing.T) {
	c, _ := loggedIn(t)
	before := c.Result()

	r := c.ListProjects(context.Background())
	require.True(t, r.OK())
	assert.Equal(t, "2 projects", r.Message)
	assert.Len(t, r.Payload, 2)
	assert.Equal(t, r, c.Projects())
	assert.Equal(t, before, c.Result())
}

func TestListProjectsFailure(t *testing.T) {
	c, f := loggedIn(t)
	f.Fail(fake.OpProjects, errors.New("down"))

	r := c.ListProjects(context.Background())
	assert.Equal(t, session.KindError, r.Kind)
	assert.Equal(t, map[string]string{"error": "down"}, r.Payload)
}

type slowClient struct {
	*fake.Client
}

func (s slowClient) Record(ctx context.Context, _ string) (*datafed.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeoutBoundsRemoteCalls(t *testing.T) {
	f := newFake()
	c := New(slowClient{f}, WithTimeout(20*time.Millisecond))
	require.NoError(t, c.Login(context.Background(), "alice", "secret"))

	start := time.Now()
	r := c.ReadRecord(context.Background(), "1")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, "Failed to read record: context deadline exceeded", r.Message)
	assert.ErrorIs(t, c.Err(), context.DeadlineExceeded)
}

func TestEventsArePublished(t *testing.T) {
	hub := session.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := hub.Subscribe(ctx)

	c := New(newFake(), WithHub(hub))
	require.Same(t, hub, c.Hub())
	require.NoError(t, c.Login(context.Background(), "alice", "secret"))
	c.ReadRecord(context.Background(), "")

	var types []session.EventType
	for len(events) > 0 {
		types = append(types, (<-events).Type)
	}
	assert.Equal(t, []session.EventType{session.EventSession, session.EventResult}, types)
}

func TestLoginPanelFlag(t *testing.T) {
	c := New(newFake())
	c.RequestLogin()
	assert.True(t, c.Session().LoginRequested)
	c.DismissLogin()
	assert.False(t, c.Session().LoginRequested)
}

func TestRootCollectionOption(t *testing.T) {
	f := newFake()
	c := New(f, WithRootCollection("c/custom"))
	require.NoError(t, c.Login(context.Background(), "alice", "secret"))
	assert.Equal(t, []string{"Error: collection \"c/custom\" not found"}, c.Session().AvailableCollections)
}
