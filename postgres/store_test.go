package postgres

import (
	"context"
	"errors"
	"os"
	"reflect"
	"sync"
	"testing"

	"github.com/etnz/coinfolio"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// openTestStore connects to the database named by COINFOLIO_TEST_POSTGRES_DSN.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("COINFOLIO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("COINFOLIO_TEST_POSTGRES_DSN not set")
	}
	s, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.cost = bcrypt.MinCost
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAuth(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	email := uuid.NewString() + "@example.com"

	id, err := s.SignUp(ctx, email, "secret")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if _, err := s.SignUp(ctx, email, "secret"); !errors.Is(err, coinfolio.ErrEmailTaken) {
		t.Errorf("second SignUp() error = %v, want ErrEmailTaken", err)
	}
	if _, err := s.SignIn(ctx, email, "wrong!"); !errors.Is(err, coinfolio.ErrInvalidCredentials) {
		t.Errorf("SignIn(wrong) error = %v, want ErrInvalidCredentials", err)
	}
	got, err := s.Resume(ctx, id.Token)
	if err != nil || got.UserID != id.UserID {
		t.Fatalf("Resume() = %+v, %v", got, err)
	}
	if err := s.SignOut(ctx, id.Token); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Resume(ctx, id.Token); !errors.Is(err, coinfolio.ErrNotSignedIn) {
		t.Errorf("Resume(signed out) error = %v, want ErrNotSignedIn", err)
	}
}

func TestIncrementPosition(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	user := uuid.NewString()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.IncrementPosition(ctx, user, "bitcoin", coinfolio.Q(0.1)); err != nil {
				t.Errorf("IncrementPosition() error = %v", err)
			}
		}()
	}
	wg.Wait()

	list, err := s.ListPositions(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || !list[0].Amount.Equal(coinfolio.Q(1)) {
		t.Errorf("positions = %v, want one of 1", list)
	}
}

func TestPositionsAndFavorites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	user := uuid.NewString()

	if _, err := s.FindPosition(ctx, user, "bitcoin"); !errors.Is(err, coinfolio.ErrNotFound) {
		t.Fatalf("FindPosition(missing) error = %v, want ErrNotFound", err)
	}
	p, err := s.InsertPosition(ctx, user, "bitcoin", coinfolio.Q(0.5))
	if err != nil {
		t.Fatal(err)
	}
	p, err = s.UpdatePositionAmount(ctx, user, p.ID, coinfolio.Q(0.75))
	if err != nil || !p.Amount.Equal(coinfolio.Q(0.75)) {
		t.Errorf("UpdatePositionAmount() = %+v, %v", p, err)
	}
	if err := s.DeletePosition(ctx, user, p.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeletePosition(ctx, user, p.ID); err != nil {
		t.Errorf("DeletePosition(again) error = %v", err)
	}

	want := []string{"bitcoin", "ethereum"}
	if err := s.SetFavorites(ctx, user, want); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetFavorites(ctx, user)
	if err != nil || !reflect.DeepEqual(got, want) {
		t.Errorf("GetFavorites() = %v, %v, want %v", got, err, want)
	}
}
