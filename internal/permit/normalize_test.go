package permit_test

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/frahmantamala/permit-service/internal/permit"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func mustPayload(body string) permit.Payload {
	payload, err := permit.DecodePayload(strings.NewReader(body))
	Expect(err).NotTo(HaveOccurred())
	return payload
}

var _ = Describe("Normalize", func() {
	It("should leave every absent field NULL", func() {
		record := permit.Normalize(mustPayload(`{"permit_number":"P-1"}`))

		Expect(record.PermitNumber).To(Equal("P-1"))
		Expect(record.IssuedTo).To(BeNil())
		Expect(record.Substation).To(BeNil())
		Expect(record.WorkDetails).To(BeNil())
		Expect(record.EarthPoints).To(BeNil())
		Expect(record.Connections).To(BeNil())
		Expect(record.ClearanceSignature).To(BeNil())
		Expect(record.CancellationConsentPerson).To(BeNil())
	})

	It("should treat explicit null as absent", func() {
		record := permit.Normalize(mustPayload(`{"permit_number":"P-1","issued_to":null,"earth_points":null}`))

		Expect(record.IssuedTo).To(BeNil())
		Expect(record.EarthPoints).To(BeNil())
	})

	It("should pass strings through unchanged", func() {
		record := permit.Normalize(mustPayload(`{"permit_number":"P-1","issued_to":"J. Otieno","urgency":"high","issue_time":"08:30"}`))

		Expect(*record.IssuedTo).To(Equal("J. Otieno"))
		Expect(*record.Urgency).To(Equal("high"))
		Expect(*record.IssueTime).To(Equal("08:30"))
	})

	It("should encode arrays and objects as JSON text", func() {
		record := permit.Normalize(mustPayload(`{
			"permit_number":"P-1",
			"earth_points":[{"loc":"A"},{"loc":"B"}],
			"work_details":{"task":"isolate"}
		}`))

		Expect(*record.EarthPoints).To(MatchJSON(`[{"loc":"A"},{"loc":"B"}]`))
		Expect(*record.WorkDetails).To(MatchJSON(`{"task":"isolate"}`))
	})

	It("should keep the literal text of numbers and booleans", func() {
		record := permit.Normalize(mustPayload(`{"permit_number":1001,"status":true,"comments":12.50}`))

		Expect(record.PermitNumber).To(Equal("1001"))
		Expect(*record.Status).To(Equal("true"))
		Expect(*record.Comments).To(Equal("12.50"))
	})

	It("should not validate the permit number", func() {
		record := permit.Normalize(permit.Payload{})
		Expect(record.PermitNumber).To(BeEmpty())
	})

	Describe("submitted_at", func() {
		It("should parse RFC3339 timestamps", func() {
			record := permit.Normalize(mustPayload(`{"permit_number":"P-1","submitted_at":"2024-03-05T10:15:00+03:00"}`))
			Expect(record.SubmittedAt).To(BeTemporally("==", time.Date(2024, 3, 5, 7, 15, 0, 0, time.UTC)))
		})

		It("should parse plain dates", func() {
			record := permit.Normalize(mustPayload(`{"permit_number":"P-1","submitted_at":"2024-03-05"}`))
			Expect(record.SubmittedAt).To(BeTemporally("==", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
		})

		It("should default to now when absent", func() {
			before := time.Now().UTC().Add(-time.Second)
			record := permit.Normalize(mustPayload(`{"permit_number":"P-1"}`))
			Expect(record.SubmittedAt).To(BeTemporally(">=", before))
			Expect(record.SubmittedAt.Location()).To(Equal(time.UTC))
		})

		It("should default to now when blank", func() {
			before := time.Now().UTC().Add(-time.Second)
			record := permit.Normalize(mustPayload(`{"permit_number":"P-1","submitted_at":"  "}`))
			Expect(record.SubmittedAt).To(BeTemporally(">=", before))
		})
	})
})

var _ = Describe("CloseoutUpdates", func() {
	It("should keep only closeout fields with a value", func() {
		updates := permit.CloseoutUpdates(mustPayload(`{
			"clearance_date":"2024-03-06",
			"clearance_time":null,
			"issued_to":"someone else",
			"connections":["L1","L2"]
		}`))

		Expect(updates).To(HaveLen(2))
		Expect(updates).To(HaveKeyWithValue("clearance_date", "2024-03-06"))
		Expect(updates).To(HaveKey("connections"))
		Expect(updates["connections"]).To(MatchJSON(`["L1","L2"]`))
	})

	It("should be empty when nothing updatable is present", func() {
		Expect(permit.CloseoutUpdates(mustPayload(`{"status":"closed"}`))).To(BeEmpty())
	})
})

var _ = Describe("DecodePayload", func() {
	It("should reject malformed JSON", func() {
		_, err := permit.DecodePayload(strings.NewReader(`{"permit_number":`))
		Expect(err).To(HaveOccurred())
	})

	It("should keep numbers as json.Number", func() {
		payload := mustPayload(`{"permit_number":42}`)
		Expect(payload["permit_number"]).To(Equal(json.Number("42")))
	})

	It("should treat a JSON null body as an empty payload", func() {
		Expect(mustPayload(`null`)).To(BeEmpty())
	})
})
