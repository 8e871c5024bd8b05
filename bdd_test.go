package accounts

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAccountLifecycle(t *testing.T) {
	Convey("Given a fresh directory", t, func() {
		directory := NewAccountDirectory()
		notifier := &notifierSpy{}
		svc := NewService(directory, notifier, NewGoogleIdentity(), StaticProficiencyGateway{}, nil)

		Convey("When Bejan registers with a local credential", func() {
			id, err := svc.RegisterAccount(registerAccountRequest{"Bejan", "b@x.edu", "password1"})
			So(err, ShouldBeNil)
			So(isValidID(string(id)), ShouldBeTrue)

			Convey("Then the account is pending until the emailed token is used", func() {
				acc, err := directory.FindByEmail("b@x.edu")
				So(err, ShouldBeNil)
				So(acc.State, ShouldEqual, StatePending)

				So(svc.ActivateAccount(notifier.token), ShouldBeNil)

				acc, _ = directory.FindByEmail("b@x.edu")
				So(acc.State, ShouldEqual, StateActive)
				So(acc.Proficiency, ShouldNotBeEmpty)
			})

			Convey("And registering the same email again fails", func() {
				_, err := svc.RegisterAccount(registerAccountRequest{"Impostor", "B@X.edu", "password2"})
				So(err, ShouldEqual, ErrExistingEmail)

				acc, _ := directory.FindByEmail("b@x.edu")
				So(acc.ID, ShouldEqual, id)
				So(acc.DisplayName, ShouldEqual, "Bejan")
			})
		})

		Convey("When a student signs in twice with the same Google token", func() {
			first, err := svc.LoginWithOAuth("google-token-A")
			So(err, ShouldBeNil)

			second, err := svc.LoginWithOAuth("google-token-A")
			So(err, ShouldBeNil)

			Convey("Then exactly one active password-less account exists", func() {
				So(second.ID, ShouldEqual, first.ID)
				So(first.Provider, ShouldEqual, ProviderOAuth)
				So(first.State, ShouldEqual, StateActive)
				So(first.Role, ShouldEqual, RoleStudent)
				So(first.Credential, ShouldBeEmpty)
			})
		})

		Convey("When an admin promotes Bejan to teacher", func() {
			_, err := svc.RegisterAccount(registerAccountRequest{"Bejan", "b@x.edu", "password1"})
			So(err, ShouldBeNil)

			So(svc.AssignRole("b@x.edu", RoleTeacher), ShouldBeNil)

			Convey("Then a re-fetched account passes the teacher-only gate and no other", func() {
				acc, err := directory.FindByEmail("b@x.edu")
				So(err, ShouldBeNil)
				So(CheckRole(acc, RoleTeacher), ShouldBeTrue)
				So(CheckRole(acc, RoleAdmin), ShouldBeFalse)
				So(CheckRole(acc, RoleStudent), ShouldBeFalse)
			})
		})
	})
}
