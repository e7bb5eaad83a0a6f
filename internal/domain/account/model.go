package account

import "strings"

type CreateAccountInput struct {
	Email   string `json:"email"`
	Country string `json:"country"`
}

func (i *CreateAccountInput) Trim() {
	i.Email = strings.TrimSpace(i.Email)
	i.Country = strings.ToUpper(strings.TrimSpace(i.Country))
}

type CreateAccountLinkInput struct {
	AccountID  string `json:"accountId"`
	ReturnURL  string `json:"returnUrl"`
	RefreshURL string `json:"refreshUrl"`
}

func (i *CreateAccountLinkInput) Trim() {
	i.AccountID = strings.TrimSpace(i.AccountID)
	i.ReturnURL = strings.TrimSpace(i.ReturnURL)
	i.RefreshURL = strings.TrimSpace(i.RefreshURL)
}
