package test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cornell-dti/curaise-sub000/internal"
)

const verifiedDoc = `<html><body>
<table><tr><td><span class="amount-container">+ $26.91</span></td></tr></table>
<p class="payment-note">Order #ord-1a2b3c4d</p>
</body></html>`

const unverifiedDoc = `<html><body>
<p>John Doe paid you $1,234.56</p>
<p>note: order ord-1a2b3c4d</p>
</body></html>`

var _ = Describe("Parser", func() {
	Context("DetectFormat", func() {
		It("routes documents with the amount container to the verified format", func() {
			Expect(internal.DetectFormat(verifiedDoc)).Should(Equal(internal.FormatVerified))
		})
		It("defaults to the unverified format when no marker is present", func() {
			Expect(internal.DetectFormat(unverifiedDoc)).Should(Equal(internal.FormatUnverified))
		})
		It("defaults to the unverified format for plain text", func() {
			Expect(internal.DetectFormat("you got paid $5")).Should(Equal(internal.FormatUnverified))
		})
		It("detects the marker even when a plain-text fallback exists", func() {
			n := internal.Notification{HTML: verifiedDoc, Text: "plain fallback"}
			Expect(internal.DetectFormat(n.Body())).Should(Equal(internal.FormatVerified))
		})
	})

	Context("ParseVerified", func() {
		It("extracts the amount and order id", func() {
			p, err := internal.ParseVerified(verifiedDoc)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.Amount.StringFixed(2)).Should(Equal("26.91"))
			Expect(p.OrderID).Should(Equal("ord-1a2b3c4d"))
		})
		It("fails when the amount container is missing", func() {
			_, err := internal.ParseVerified("<html><body><p>hello</p></body></html>")
			Expect(errors.Is(err, internal.ErrParseFailure)).Should(BeTrue())
		})
		It("fails when the amount container holds no amount", func() {
			doc := `<div class="amount-container">pending</div>`
			_, err := internal.ParseVerified(doc)
			Expect(errors.Is(err, internal.ErrParseFailure)).Should(BeTrue())
		})
		It("returns an incomplete result when the note is missing", func() {
			doc := `<div class="amount-container">$5.00</div>`
			p, err := internal.ParseVerified(doc)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.Amount.StringFixed(2)).Should(Equal("5.00"))
			Expect(p.OrderID).Should(BeEmpty())
		})
	})

	Context("ParseUnverified", func() {
		It("extracts the amount and order id from flattened text", func() {
			p, err := internal.ParseUnverified(unverifiedDoc)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.Amount.StringFixed(2)).Should(Equal("1234.56"))
			Expect(p.OrderID).Should(Equal("ord-1a2b3c4d"))
		})
		It("works on plain text bodies", func() {
			p, err := internal.ParseUnverified("You received $9.00 for order ord-9f8e7d6c")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.Amount.StringFixed(2)).Should(Equal("9.00"))
			Expect(p.OrderID).Should(Equal("ord-9f8e7d6c"))
		})
		It("fails when no amount is present", func() {
			_, err := internal.ParseUnverified("no money here")
			Expect(errors.Is(err, internal.ErrParseFailure)).Should(BeTrue())
		})
		It("leaves the order id empty when no token is found", func() {
			p, err := internal.ParseUnverified("You received $9.00")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.OrderID).Should(BeEmpty())
		})
	})
})
