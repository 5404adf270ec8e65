package domain

import (
	"strconv"
	"strings"
	"time"
)

// UserProfile is the per-user document, keyed by the identity
// service's user id.
type UserProfile struct {
	Name        string  `json:"name"`
	Surname     string  `json:"surname"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phoneNumber"`
	Address     string  `json:"address"`
	DateOfBirth string  `json:"dateOfBirth"`
	Balance     float64 `json:"balance"`
}

func UserProfileFromDocument(doc map[string]any) UserProfile {
	return UserProfile{
		Name:        asString(doc["name"]),
		Surname:     asString(doc["surname"]),
		Email:       asString(doc["email"]),
		PhoneNumber: asString(doc["phoneNumber"]),
		Address:     asString(doc["address"]),
		DateOfBirth: asString(doc["dateOfBirth"]),
		Balance:     asFloat(doc["balance"]),
	}
}

func (u UserProfile) Document() map[string]any {
	return map[string]any{
		"name":        u.Name,
		"surname":     u.Surname,
		"email":       u.Email,
		"phoneNumber": u.PhoneNumber,
		"address":     u.Address,
		"dateOfBirth": u.DateOfBirth,
		"balance":     u.Balance,
	}
}

// Age derives the age at the given instant from DateOfBirth in
// "YYYY-M-D" form: calendar-year difference, minus one when the
// birthday has not happened yet this year. The parts are not checked
// against a real calendar.
func (u UserProfile) Age(now time.Time) int {
	parts := strings.Split(u.DateOfBirth, "-")
	if len(parts) != 3 {
		return 0
	}
	birthYear, err1 := strconv.Atoi(parts[0])
	birthMonth, err2 := strconv.Atoi(parts[1])
	birthDay, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}

	age := now.Year() - birthYear
	if int(now.Month()) < birthMonth ||
		(int(now.Month()) == birthMonth && now.Day() < birthDay) {
		age--
	}
	return age
}
