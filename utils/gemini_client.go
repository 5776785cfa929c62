package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/raushankrgupta/fitly-atelier/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var (
	// ErrBlocked marks responses withheld by the safety filters
	ErrBlocked = errors.New("request was blocked")
	// ErrNoImage marks responses that carried no image part
	ErrNoImage = errors.New("the AI model did not return an image")
	// ErrQuota marks rate limit or quota rejections from the API
	ErrQuota = errors.New("quota exceeded")
)

// generatedFolder is the S3 prefix generated images are published under
const generatedFolder = "generated_images"

const modelPhotoPrompt = "You are a master bespoke tailor and fashion photographer. Transform the person in this image into a full-body luxury fashion model. The background must be a sophisticated, clean, neutral studio backdrop (#f8f8f8). Preserve the person's identity and body type perfectly. Place them in a standard, elegant standing model pose. Return ONLY the final image."

const bespokeStandards = `

**Bespoke Standards:**
- Impeccable fit and drape.
- High-quality textile rendering with realistic lighting.
- Preserve the model's identity, hair, pose, and background perfectly.
- Return ONLY the final, edited image.`

var targetPrompts = map[models.ClothingTarget]string{
	models.TargetShirt:    "You are a virtual bespoke tailor. Apply the provided garment or fabric texture to a tailored shirt. The shirt must have natural folds, crisp collars, and follow the model's body shape perfectly. Replicate the color, pattern, and weave precisely.",
	models.TargetSuit:     "You are a virtual bespoke tailor. Apply the provided fabric texture to a full bespoke suit (jacket and trousers). The suit must be perfectly tailored to the model's body. Replicate the fabric's color, pattern, and weave precisely on both the jacket and trousers. The jacket should be worn over whatever is currently under it.",
	models.TargetJacket:   "You are a virtual bespoke tailor. Apply the provided garment or fabric texture to a tailored jacket only, worn over whatever is currently under it. Leave the trousers unchanged. Replicate the color, pattern, and weave precisely.",
	models.TargetTrousers: "You are a virtual bespoke tailor. Apply the provided garment or fabric texture to tailored trousers only. Leave everything above the waist unchanged. Replicate the color, pattern, and weave precisely.",
}

const removeJacketPrompt = "You are a virtual bespoke tailor. Remove the jacket or blazer the model is wearing, revealing the shirt and trousers beneath it exactly as they would look. Do not change anything else about the outfit, the person, their pose, or the background. Return ONLY the final, edited image."

func posePrompt(instruction string) string {
	return fmt.Sprintf(`Regenerate this image from a different perspective: "%s". The person, bespoke outfit, and background must remain perfectly consistent. Return ONLY the final image.`, instruction)
}

type contentGenerator func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)

// GeminiGenerator performs the image generation calls of a try-on session
// against a Gemini image model.
type GeminiGenerator struct {
	client   *genai.Client
	generate contentGenerator
	resolve  func(ctx context.Context, ref string) ([]byte, string, error)
	publish  func(ctx context.Context, data []byte, mimeType, folder string) (string, error)
}

// NewGeminiGenerator creates a generator for the given image model
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	return &GeminiGenerator{
		client:   client,
		generate: model.GenerateContent,
		resolve:  ResolveImage,
		publish:  PublishImage,
	}, nil
}

// Close releases the underlying client
func (g *GeminiGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// NormalizeModelPhoto turns a raw upload into the studio "digital twin"
func (g *GeminiGenerator) NormalizeModelPhoto(ctx context.Context, rawImage string) (string, error) {
	photo, err := g.imagePart(ctx, rawImage)
	if err != nil {
		return "", fmt.Errorf("failed to load model photo: %w", err)
	}
	return g.run(ctx, "normalize", photo, genai.Text(modelPhotoPrompt))
}

// CompositeGarment applies the garment image to target on the base image
func (g *GeminiGenerator) CompositeGarment(ctx context.Context, baseImage, garmentImage string, target models.ClothingTarget) (string, error) {
	prompt, ok := targetPrompts[target]
	if !ok {
		return "", fmt.Errorf("unsupported clothing target %q", target)
	}
	base, err := g.imagePart(ctx, baseImage)
	if err != nil {
		return "", fmt.Errorf("failed to load model image: %w", err)
	}
	garment, err := g.imagePart(ctx, garmentImage)
	if err != nil {
		return "", fmt.Errorf("failed to load garment image: %w", err)
	}
	return g.run(ctx, "composite", base, garment, genai.Text(prompt+bespokeStandards))
}

// RenderPose re-renders the same person and outfit from another pose
func (g *GeminiGenerator) RenderPose(ctx context.Context, baseImage, poseInstruction string) (string, error) {
	base, err := g.imagePart(ctx, baseImage)
	if err != nil {
		return "", fmt.Errorf("failed to load try-on image: %w", err)
	}
	return g.run(ctx, "pose", base, genai.Text(posePrompt(poseInstruction)))
}

// RemoveJacket strips the outer jacket layer from the base image
func (g *GeminiGenerator) RemoveJacket(ctx context.Context, baseImage string) (string, error) {
	base, err := g.imagePart(ctx, baseImage)
	if err != nil {
		return "", fmt.Errorf("failed to load model image: %w", err)
	}
	return g.run(ctx, "remove_jacket", base, genai.Text(removeJacketPrompt))
}

func (g *GeminiGenerator) imagePart(ctx context.Context, ref string) (genai.Part, error) {
	data, mimeType, err := g.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return genai.Blob{MIMEType: mimeType, Data: data}, nil
}

func (g *GeminiGenerator) run(ctx context.Context, op string, parts ...genai.Part) (string, error) {
	resp, err := g.generate(ctx, parts...)
	if err != nil {
		Logger.Warn("gemini call failed", zap.String("op", op), zap.Error(err))
		return "", classifyGenerateError(err)
	}

	data, mimeType, err := imageFromResponse(resp)
	if err != nil {
		Logger.Warn("gemini returned no usable image", zap.String("op", op), zap.Error(err))
		return "", err
	}

	ref, err := g.publish(ctx, data, mimeType, generatedFolder)
	if err != nil {
		return "", fmt.Errorf("failed to store generated image: %w", err)
	}
	return ref, nil
}

func classifyGenerateError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("%w: %v", ErrBlocked, blocked)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") {
		return fmt.Errorf("%w: %v", ErrQuota, err)
	}
	return fmt.Errorf("failed to generate content: %w", err)
}

// imageFromResponse extracts the first inline image of a response
func imageFromResponse(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	if resp == nil {
		return nil, "", ErrNoImage
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return nil, "", fmt.Errorf("%w. Reason: %s", ErrBlocked, fb.BlockReason)
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && strings.HasPrefix(blob.MIMEType, "image/") && len(blob.Data) > 0 {
				return blob.Data, blob.MIMEType, nil
			}
		}
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		switch fr := resp.Candidates[0].FinishReason; fr {
		case genai.FinishReasonUnspecified, genai.FinishReasonStop:
		case genai.FinishReasonSafety:
			return nil, "", fmt.Errorf("%w. Generation stopped: %s", ErrBlocked, fr)
		default:
			return nil, "", fmt.Errorf("generation stopped: %s", fr)
		}
	}

	return nil, "", fmt.Errorf("%w. This can happen due to safety filters", ErrNoImage)
}
