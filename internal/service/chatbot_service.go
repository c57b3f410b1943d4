package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aether-industries/storefront-api/internal/repository"
	"github.com/aether-industries/storefront-api/pkg/groq"
)

const chatbotSystemPrompt = `You are a customer support chatbot for Aether Industries, a specialized supplier of genuine Freon™ brand refrigerants and related HVAC/R accessories (manifold gauges, recovery machines, vacuum pumps, leak detectors).

Answer questions about:
- Freon™ refrigerant products (R-410A, R-134a, R-32, MO99/R-438A): availability, properties, typical applications, container sizes.
- Refrigerant accessories: compatibility, features, usage.
- EPA regulations and Section 608 certification requirements for purchasing and handling refrigerants.
- Order status, shipping policies for hazardous materials, return policies, account inquiries.

Guidelines:
- Be friendly, professional, and concise; your readers are busy technicians.
- If a question is outside your scope, politely decline and set requiresFollowUp to true with an appropriate followUpTopic.
- When a user asks about purchasing a regulated refrigerant, remind them about EPA certification requirements.
- Do not quote prices you are not certain of; guide users to "Request a Quote" for bulk or unlisted items.
- Use "Freon™" when referring to the brand.

Respond with a JSON object: {"response": string, "requiresFollowUp": boolean, "followUpTopic": string}.`

// ChatRequest is a support query, optionally scoped to an order.
type ChatRequest struct {
	Query         string `json:"query" binding:"required"`
	OrderID       string `json:"orderId"`
	EPACertNumber string `json:"epaCertNumber"`
}

// ChatReply is the structured chatbot answer.
type ChatReply struct {
	Response         string `json:"response"`
	RequiresFollowUp bool   `json:"requiresFollowUp,omitempty"`
	FollowUpTopic    string `json:"followUpTopic,omitempty"`
}

// ChatbotService fronts the LLM support collaborator. Calls are single
// request/response with no retry or backoff; a failure surfaces to the
// handler as an error mapped to a generic message.
type ChatbotService struct {
	llm    *groq.Client
	orders *repository.OrderRepository
}

// NewChatbotService constructs a ChatbotService.
func NewChatbotService(llm *groq.Client, orders *repository.OrderRepository) *ChatbotService {
	return &ChatbotService{llm: llm, orders: orders}
}

// Chat answers a support query. When an order id is supplied, the order's
// status is looked up and injected as context so the model can answer
// order-status questions without hallucinating.
func (s *ChatbotService) Chat(ctx context.Context, req *ChatRequest) (*ChatReply, error) {
	var sb strings.Builder
	sb.WriteString("User query: ")
	sb.WriteString(req.Query)

	if req.OrderID != "" {
		sb.WriteString(fmt.Sprintf("\nOrder ID: %s", req.OrderID))
		if order, err := s.orders.GetByID(ctx, req.OrderID); err == nil {
			sb.WriteString(fmt.Sprintf("\nOrder context: type=%s, payment status=%s, total=%s, placed at %s",
				order.Type, order.PaymentStatus, order.Total.StringFixed(2), order.CreatedAt.Format("2006-01-02")))
		} else {
			sb.WriteString("\nOrder context: no order found with this ID.")
		}
	}
	if req.EPACertNumber != "" {
		sb.WriteString(fmt.Sprintf("\nUser EPA certification number: %s", req.EPACertNumber))
	}

	messages := []groq.Message{
		{Role: "system", Content: chatbotSystemPrompt},
		{Role: "user", Content: sb.String()},
	}

	content, err := s.llm.ChatCompletion(ctx, messages, true)
	if err != nil {
		return nil, err
	}

	var reply ChatReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil || reply.Response == "" {
		// Model ignored the JSON instruction; treat the whole completion as
		// the answer.
		log.Debug().Msg("Chatbot reply was not valid JSON, using raw content")
		reply = ChatReply{Response: content}
	}
	return &reply, nil
}
