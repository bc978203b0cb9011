package controllers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/ecoflow/internal/client/client"
	"github.com/dmitrijs2005/ecoflow/internal/client/debounce"
	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/stretchr/testify/require"
)

func newList(api Lister, opts ...ListOption) (*ListController, *manualScheduler) {
	sched := &manualScheduler{}
	opts = append([]ListOption{WithDebouncer(debounce.New(DefaultSearchDebounce, debounce.WithAfterFunc(sched.after)))}, opts...)
	return NewListController(api, opts...), sched
}

func TestList_InitialStateIsIdle(t *testing.T) {
	c, _ := newList(&fakeLister{})
	v := c.Snapshot()
	require.Equal(t, ViewIdle, v.State)
	require.Equal(t, DefaultPageSize, v.Query.PageSize)
	require.False(t, v.HasNext)
	require.False(t, v.HasPrev)
}

func TestList_RapidSearchSendsOneQueryWithLastText(t *testing.T) {
	api := &fakeLister{respond: func(p client.ListParams) ([]models.EcoSummary, error) {
		return rows(2, models.StatusDraft), nil
	}}
	c, sched := newList(api)
	ctx := context.Background()

	for _, text := range []string{"p", "pu", "pum", "pump"} {
		c.SetSearch(ctx, text)
	}
	require.Empty(t, api.Calls())

	sched.fireAll()
	c.Wait()

	calls := api.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "pump", calls[0].Search)
	require.Equal(t, ViewResults, c.Snapshot().State)
}

func TestList_StatusChangeResetsPageIndex(t *testing.T) {
	api := &fakeLister{respond: func(p client.ListParams) ([]models.EcoSummary, error) {
		return rows(p.Limit, models.StatusDraft), nil
	}}
	c, _ := newList(api, WithPageSize(10))
	ctx := context.Background()

	c.Refresh(ctx)
	c.Wait()
	require.True(t, c.ChangePage(ctx, 1))
	c.Wait()
	require.True(t, c.ChangePage(ctx, 1))
	c.Wait()
	require.Equal(t, 2, c.Query().PageIndex)

	require.NoError(t, c.SetStatus(ctx, models.StatusSubmitted))
	c.Wait()

	calls := api.Calls()
	last := calls[len(calls)-1]
	require.Equal(t, 0, last.Offset)
	require.Equal(t, models.StatusSubmitted, last.Status)
	require.Equal(t, 0, c.Query().PageIndex)
}

func TestList_SetStatusCancelsPendingSearch(t *testing.T) {
	api := &fakeLister{}
	c, sched := newList(api)
	ctx := context.Background()

	c.SetSearch(ctx, "valve")
	require.NoError(t, c.SetStatus(ctx, models.StatusDraft))
	c.Wait()
	sched.fireAll()
	c.Wait()

	calls := api.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "valve", calls[0].Search)
	require.Equal(t, models.StatusDraft, calls[0].Status)
}

func TestList_ShortPageDisablesForward(t *testing.T) {
	api := &fakeLister{respond: func(p client.ListParams) ([]models.EcoSummary, error) {
		return rows(3, models.StatusDraft), nil
	}}
	c, _ := newList(api)
	ctx := context.Background()

	c.Refresh(ctx)
	c.Wait()

	v := c.Snapshot()
	require.Equal(t, ViewResults, v.State)
	require.Len(t, v.Items, 3)
	require.Equal(t, 50, v.Query.PageSize)
	require.False(t, v.HasNext)
	require.False(t, c.ChangePage(ctx, 1))
	require.Len(t, api.Calls(), 1)
}

func TestList_ChangePageClampsAtZero(t *testing.T) {
	api := &fakeLister{respond: func(p client.ListParams) ([]models.EcoSummary, error) {
		return rows(p.Limit, models.StatusDraft), nil
	}}
	c, _ := newList(api, WithPageSize(5))
	ctx := context.Background()

	c.Refresh(ctx)
	c.Wait()
	require.True(t, c.ChangePage(ctx, -1))
	c.Wait()
	require.Equal(t, 0, c.Query().PageIndex)
	require.Len(t, api.Calls(), 2)
	require.Equal(t, 0, api.Calls()[1].Offset)

	require.True(t, c.ChangePage(ctx, 1))
	c.Wait()
	require.Equal(t, 5, api.Calls()[2].Offset)
	require.True(t, c.Snapshot().HasPrev)

	require.True(t, c.ChangePage(ctx, -3))
	c.Wait()
	require.Equal(t, 0, c.Query().PageIndex)
}

func TestList_ForwardWhileLoadingGoesThrough(t *testing.T) {
	release := make(chan struct{})
	api := &fakeLister{respond: func(p client.ListParams) ([]models.EcoSummary, error) {
		if p.Offset == 0 {
			<-release
		}
		return rows(p.Limit, models.StatusDraft), nil
	}}
	c, _ := newList(api, WithPageSize(5))
	ctx := context.Background()

	c.Refresh(ctx)
	require.Eventually(t, func() bool { return c.Snapshot().State == ViewLoading }, time.Second, time.Millisecond)

	require.True(t, c.ChangePage(ctx, 1))
	require.Eventually(t, func() bool { return len(api.Calls()) == 2 }, time.Second, time.Millisecond)
	close(release)
	c.Wait()

	v := c.Snapshot()
	require.Equal(t, 1, v.Query.PageIndex)
	require.Equal(t, ViewResults, v.State)
	require.Equal(t, 5, api.Calls()[1].Offset)
}

func TestList_ForwardAfterErrorGoesThrough(t *testing.T) {
	api := &fakeLister{respond: func(p client.ListParams) ([]models.EcoSummary, error) {
		return nil, client.ErrUnavailable
	}}
	c, _ := newList(api, WithPageSize(5))
	ctx := context.Background()

	c.Refresh(ctx)
	c.Wait()
	require.Equal(t, ViewError, c.Snapshot().State)

	require.True(t, c.ChangePage(ctx, 1))
	c.Wait()
	require.Len(t, api.Calls(), 2)
}

func TestList_EmptyPageRefusesForward(t *testing.T) {
	api := &fakeLister{respond: func(client.ListParams) ([]models.EcoSummary, error) {
		return []models.EcoSummary{}, nil
	}}
	c, _ := newList(api)
	ctx := context.Background()

	c.Refresh(ctx)
	c.Wait()
	require.False(t, c.ChangePage(ctx, 1))
	require.Len(t, api.Calls(), 1)
}

func TestList_EmptyPageIsExplicit(t *testing.T) {
	c, _ := newList(&fakeLister{respond: func(client.ListParams) ([]models.EcoSummary, error) {
		return []models.EcoSummary{}, nil
	}})
	c.Refresh(context.Background())
	c.Wait()

	v := c.Snapshot()
	require.Equal(t, ViewEmpty, v.State)
	require.Empty(t, v.Items)
	require.False(t, v.HasNext)
}

func TestList_ErrorState(t *testing.T) {
	c, _ := newList(&fakeLister{respond: func(client.ListParams) ([]models.EcoSummary, error) {
		return nil, client.ErrUnauthorized
	}})
	c.Refresh(context.Background())
	c.Wait()

	v := c.Snapshot()
	require.Equal(t, ViewError, v.State)
	require.ErrorIs(t, v.Err, client.ErrUnauthorized)
}

func TestList_StaleResultDiscarded(t *testing.T) {
	releaseDraft := make(chan struct{})
	draftStarted := make(chan struct{})
	api := &fakeLister{respond: func(p client.ListParams) ([]models.EcoSummary, error) {
		if p.Status == models.StatusDraft {
			close(draftStarted)
			<-releaseDraft
			return rows(4, models.StatusDraft), nil
		}
		return rows(1, models.StatusApproved), nil
	}}
	c, _ := newList(api)
	ctx := context.Background()

	require.NoError(t, c.SetStatus(ctx, models.StatusDraft))
	<-draftStarted
	require.NoError(t, c.SetStatus(ctx, models.StatusApproved))

	// let the approved query land before the older draft one resolves
	require.Eventually(t, func() bool { return c.Snapshot().State == ViewResults }, time.Second, time.Millisecond)
	close(releaseDraft)
	c.Wait()

	v := c.Snapshot()
	require.Equal(t, models.StatusApproved, v.Query.Status)
	require.Len(t, v.Items, 1)
	require.Equal(t, models.StatusApproved, v.Items[0].Status)
}

func TestList_OnChangeSeesLoadingThenResults(t *testing.T) {
	c, _ := newList(&fakeLister{respond: func(client.ListParams) ([]models.EcoSummary, error) {
		return rows(1, models.StatusDraft), nil
	}})

	var mu sync.Mutex
	var states []ViewState
	c.OnChange(func(v ListView) {
		mu.Lock()
		states = append(states, v.State)
		mu.Unlock()
	})

	c.Refresh(context.Background())
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []ViewState{ViewLoading, ViewResults}, states)
}

func TestList_Validation(t *testing.T) {
	c, _ := newList(&fakeLister{})
	ctx := context.Background()

	require.ErrorIs(t, c.SetPageSize(ctx, 0), ErrInvalidPageSize)
	require.ErrorIs(t, c.SetStatus(ctx, models.Status("ARCHIVED")), models.ErrUnknownStatus)
	require.NoError(t, c.SetStatus(ctx, ""))
	require.NoError(t, c.SetPageSize(ctx, 20))
	c.Wait()
	require.Equal(t, 20, c.Query().PageSize)
}

func TestViewState_String(t *testing.T) {
	require.Equal(t, "empty", ViewEmpty.String())
	require.Equal(t, "ViewState(42)", ViewState(42).String())
}
