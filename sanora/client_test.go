package sanora_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/allyabase/sessionless-go"
	"github.com/allyabase/sessionless-go/internal/testserver"
	"github.com/allyabase/sessionless-go/sanora"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(testserver.New().Handler())
	t.Cleanup(srv.Close)

	c, err := sanora.New(srv.URL + "/sanora/")
	require.NoError(t, err, "sanora.New should succeed")

	user, err := c.CreateUser(ctx)
	require.NoError(t, err, "CreateUser should succeed")
	require.Len(t, user.UUID, 36)

	const title = "My Book: Vol 1"

	t.Run("GetUser", func(t *testing.T) {
		got, err := c.GetUser(ctx, user.UUID)
		require.NoError(t, err)
		require.Equal(t, user.UUID, got.UUID)
	})

	product, err := c.AddProduct(ctx, user.UUID, title, "a book about books", 1299)
	require.NoError(t, err, "AddProduct should succeed")
	require.Equal(t, title, product.Title)
	require.Equal(t, int64(1299), product.Price)
	require.Equal(t, user.UUID, product.Author)

	t.Run("Products", func(t *testing.T) {
		got, err := c.GetProduct(ctx, user.UUID, title)
		require.NoError(t, err, "GetProduct should succeed")
		require.Equal(t, product.UUID, got.UUID)
		require.Equal(t, "a book about books", got.Description)

		all, err := c.GetProducts(ctx, user.UUID)
		require.NoError(t, err)
		require.Contains(t, all, title)

		_, err = c.GetProduct(ctx, user.UUID, "nope")
		var appErr *sessionless.ApplicationError
		require.ErrorAs(t, err, &appErr)
	})
	t.Run("Replacing a product keeps its id", func(t *testing.T) {
		again, err := c.AddProduct(ctx, user.UUID, title, "second edition", 1599)
		require.NoError(t, err)
		require.Equal(t, product.UUID, again.UUID)
		require.Equal(t, int64(1599), again.Price)
	})
	t.Run("Uploads", func(t *testing.T) {
		res, err := c.PutArtifact(ctx, user.UUID, title, "book.epub", strings.NewReader("epub bytes"))
		require.NoError(t, err, "PutArtifact should succeed")
		require.True(t, res.Success)

		res, err = c.PutImage(ctx, user.UUID, title, "cover.png", strings.NewReader("png bytes"))
		require.NoError(t, err, "PutImage should succeed")
		require.True(t, res.Success)

		got, err := c.GetProduct(ctx, user.UUID, title)
		require.NoError(t, err)
		require.Equal(t, []string{"book.epub"}, got.Artifacts)
		require.Equal(t, "cover.png", got.Image)

		_, err = c.PutImage(ctx, user.UUID, "unknown", "cover.png", strings.NewReader("png"))
		var appErr *sessionless.ApplicationError
		require.ErrorAs(t, err, &appErr)
	})
	t.Run("Orders", func(t *testing.T) {
		updated, err := c.AddOrder(ctx, user.UUID, sanora.Order{ProductID: product.ProductID, City: "Springfield"})
		require.NoError(t, err, "AddOrder should succeed")
		require.Len(t, updated.Orders, 1)

		_, err = c.AddOrder(ctx, user.UUID, sanora.Order{ProductID: "other"})
		require.NoError(t, err)

		orders, err := c.GetOrders(ctx, user.UUID, product.ProductID)
		require.NoError(t, err)
		require.Len(t, orders.Orders, 1)
		require.Equal(t, "Springfield", orders.Orders[0].City)

		_, err = c.AddOrder(ctx, user.UUID, sanora.Order{})
		require.ErrorIs(t, err, sessionless.ErrMissingField)
	})
	t.Run("Delete", func(t *testing.T) {
		res, err := c.DeleteUser(ctx, user.UUID)
		require.NoError(t, err)
		require.True(t, res.Success)

		_, err = c.GetProducts(ctx, user.UUID)
		var appErr *sessionless.ApplicationError
		require.ErrorAs(t, err, &appErr)
	})
}
