package store

import (
	"context"
	"fmt"
)

// seedTemplates is the built-in gallery. Initial content is semantic
// HTML markup in the converter's vocabulary; the editor transforms it
// into a structured document when a draft is created from a template.
var seedTemplates = []Template{
	{
		ID:             "blank",
		Name:           "Blank Document",
		Description:    "Start from an empty page.",
		InitialContent: "<p></p>",
		ImageURL:       "/blank-document.svg",
		Label:          "Blank Document",
	},
	{
		ID:          "divorce-petition-mutual-consent",
		Name:        "Petition for Dissolution of Marriage by Mutual Consent",
		Description: "Petition under Section 13-B of the Hindu Marriage Act, 1955 for divorce by mutual consent.",
		InitialContent: `<p><u>PETITION FOR DISSOLUTION OF MARRIAGE BY A DECREE OF DIVORCE BY</u></p>
<h1>MUTUAL CONSENT</h1>
<p>IN THE COURT OF PRINCIPAL JUDGE, FAMILY COURT [[city]], [[state]]</p>
<h2>HMA PETITION NO. [[petitionNumber]] OF [[year]]</h2>
<p>IN THE MATTER OF:</p>
<p>1. [[petitionerOneName]], S/O [[petitionerOneFather]], resident of [[petitionerOneAddress]]</p>
<p>2. [[petitionerTwoName]], D/O [[petitionerTwoFather]], resident of [[petitionerTwoAddress]]</p>
<p><strong>PETITION UNDER SECTION 13-B OF THE HINDU MARRIAGE ACT, 1955</strong></p>
<p>MOST RESPECTFULLY SHOWETH:</p>
<ol><li><p>That the marriage between the petitioners was solemnized on [[marriageDate]] at [[marriagePlace]] according to Hindu rites and ceremonies.</p></li>
<li><p>That the petitioners have been living separately since [[separationDate]] and have not been able to live together.</p></li>
<li><p>That the parties have mutually agreed that the marriage should be dissolved.</p></li></ol>
<p><strong>PRAYER</strong></p>
<p>It is therefore most respectfully prayed that this Hon'ble Court may be pleased to dissolve the marriage between the petitioners by a decree of divorce by mutual consent.</p>`,
		ImageURL: "/divorce-petition.svg",
		Label:    "PETITION FOR DISSOLUTION OF MARRIAGE BY A DECREE OF DIVORCE BY",
	},
	{
		ID:          "partnership-deed",
		Name:        "Partnership Deed",
		Description: "Deed of partnership recording the firm name, capital contributions and profit sharing of the partners.",
		InitialContent: `<h1>PARTNERSHIP DEED</h1>
<p>THIS DEED OF PARTNERSHIP is made at [[place]] on this [[day]] day of [[month]], [[year]] BETWEEN:</p>
<p>1. [[partnerOneName]], S/O [[partnerOneFather]], resident of [[partnerOneAddress]] (hereinafter referred to as the FIRST PARTY);</p>
<p>2. [[partnerTwoName]], S/O [[partnerTwoFather]], resident of [[partnerTwoAddress]] (hereinafter referred to as the SECOND PARTY).</p>
<p><strong>NOW THIS DEED WITNESSETH AS FOLLOWS:</strong></p>
<ol><li><p>The parties shall carry on business in partnership under the firm name [[firmName]].</p></li>
<li><p>The principal place of business shall be at [[businessAddress]].</p></li>
<li><p>The capital of the firm shall be contributed by the partners as mutually agreed.</p></li>
<li><p>The profits and losses of the firm shall be shared equally between the partners.</p></li></ol>
<p>IN WITNESS WHEREOF the parties have set their hands on the day, month and year first above written.</p>`,
		ImageURL: "/partnership-deed.svg",
		Label:    "Partnership Deed",
	},
	{
		ID:          "indigent-person-application",
		Name:        "Application to Sue as an Indigent Person",
		Description: "Application under Order XXXIII of the Code of Civil Procedure, 1908 to institute a suit as an indigent person.",
		InitialContent: `<h1>APPLICATION TO SUE AS AN INDIGENT PERSON</h1>
<p>IN THE COURT OF [[courtName]], [[city]]</p>
<p>CIVIL SUIT NO. [[suitNumber]] OF [[year]]</p>
<p>[[applicantName]] ... Applicant</p>
<p>VERSUS</p>
<p>[[respondentName]] ... Respondent</p>
<p><strong>APPLICATION UNDER ORDER XXXIII RULES 1 AND 2 OF THE CODE OF CIVIL PROCEDURE, 1908</strong></p>
<p>MOST RESPECTFULLY SHOWETH:</p>
<ol><li><p>That the applicant intends to institute the accompanying suit but is not possessed of sufficient means to pay the fee prescribed by law for the plaint.</p></li>
<li><p>That the applicant is not possessed of property worth one thousand rupees other than property exempt from attachment in execution of a decree.</p></li></ol>
<p><strong>PRAYER</strong></p>
<p>It is therefore prayed that the applicant be allowed to institute the suit as an indigent person.</p>`,
		ImageURL: "/indigent-person-application.svg",
		Label:    "APPLICATION TO SUE AS AN INDIGENT PERSON",
	},
}

// Seed inserts the built-in gallery templates, skipping ids that
// already exist so operator edits survive restarts.
func (s *Store) Seed(ctx context.Context) error {
	for _, tpl := range seedTemplates {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO templates (id, name, description, initial_content, image_url, label)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			tpl.ID, tpl.Name, tpl.Description, tpl.InitialContent, tpl.ImageURL, tpl.Label)
		if err != nil {
			return fmt.Errorf("store: seed template %s: %w", tpl.ID, err)
		}
	}
	return nil
}
