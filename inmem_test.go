package accounts

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountDirectory_InsertIfAbsentIsAtomic(t *testing.T) {
	dir := NewAccountDirectory()

	const racers = 32
	var wg sync.WaitGroup
	errs := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- dir.InsertIfAbsent(&Account{
				ID:          NewID(),
				DisplayName: fmt.Sprintf("racer-%d", i),
				Email:       "shared@x.edu",
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	var wins, losses int
	for err := range errs {
		if err == nil {
			wins++
		} else {
			assert.Equal(t, ErrExistingEmail, err)
			losses++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, losses)
}

func TestAccountDirectory_EmailIsCaseInsensitive(t *testing.T) {
	dir := NewAccountDirectory()
	acc := &Account{ID: NewID(), Email: "b@x.edu"}
	assert.NoError(t, dir.InsertIfAbsent(acc))

	ok, err := dir.Exists("B@X.EDU")
	assert.NoError(t, err)
	assert.True(t, ok)

	found, err := dir.FindByEmail("B@x.Edu")
	assert.NoError(t, err)
	assert.Equal(t, acc.ID, found.ID)
}

func TestAccountDirectory_Updates(t *testing.T) {
	dir := NewAccountDirectory()
	acc := &Account{ID: NewID(), Email: "b@x.edu", State: StatePending, Role: RoleStudent}
	assert.NoError(t, dir.InsertIfAbsent(acc))

	assert.NoError(t, dir.UpdateState(acc.ID, StateActive))
	assert.NoError(t, dir.UpdateRole("b@x.edu", RoleTeacher))
	assert.NoError(t, dir.UpdateProficiency(acc.ID, `{"gpa":3.7}`))

	found, _ := dir.FindByID(acc.ID)
	assert.Equal(t, StateActive, found.State)
	assert.Equal(t, RoleTeacher, found.Role)
	assert.Equal(t, `{"gpa":3.7}`, found.Proficiency)
}

func TestAccountDirectory_FindersReturnSnapshots(t *testing.T) {
	dir := NewAccountDirectory()
	acc := &Account{ID: NewID(), Email: "b@x.edu", Role: RoleStudent}
	assert.NoError(t, dir.InsertIfAbsent(acc))

	fetched, err := dir.FindByEmail("b@x.edu")
	assert.NoError(t, err)

	assert.NoError(t, dir.UpdateRole("b@x.edu", RoleTeacher))

	assert.Equal(t, RoleStudent, fetched.Role)

	refetched, err := dir.FindByID(acc.ID)
	assert.NoError(t, err)
	assert.Equal(t, RoleTeacher, refetched.Role)
}

func TestAccountDirectory_ConcurrentReadsAndUpdates(t *testing.T) {
	dir := NewAccountDirectory()
	acc := &Account{ID: NewID(), Email: "b@x.edu", Role: RoleStudent}
	assert.NoError(t, dir.InsertIfAbsent(acc))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if found, err := dir.FindByEmail("b@x.edu"); err == nil {
					_ = found.Role
				}
				if found, err := dir.FindByID(acc.ID); err == nil {
					_ = found.Proficiency
				}
			}
		}()
	}

	for j := 0; j < 100; j++ {
		assert.NoError(t, dir.UpdateRole("b@x.edu", RoleTeacher))
		assert.NoError(t, dir.UpdateState(acc.ID, StateActive))
		assert.NoError(t, dir.UpdateProficiency(acc.ID, `{"gpa":3.7}`))
	}
	wg.Wait()
}

func TestAccountDirectory_UpdatesOnMissingRecords(t *testing.T) {
	dir := NewAccountDirectory()

	assert.Equal(t, ErrNotFound, dir.UpdateState(NewID(), StateActive))
	assert.Equal(t, ErrNotFound, dir.UpdateRole("nobody@x.edu", RoleAdmin))
	assert.Equal(t, ErrNotFound, dir.UpdateProficiency(NewID(), "{}"))

	_, err := dir.FindByEmail("nobody@x.edu")
	assert.Equal(t, ErrNotFound, err)
}
