package server

import (
	"io"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadPostImage handles POST /api/posts/:id/image attaching a processed
// image to the viewer's own post. The upload is re-encoded into a master
// JPEG plus the variant ladder before the response is written.
func (s *Server) UploadPostImage(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID, viewer.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", postID))
	}
	if post.UserID != viewer.ID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only attach images to your own posts"))
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image file is required (multipart field 'image')"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	img, err := s.imageService.Upload(c.Context(), service.UploadImageInput{
		UserID:      viewer.ID,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	post.ImageURL = s.imageService.BuildMasterImageURL(img.Hash)
	post.ImageHash = img.Hash
	if updateErr := s.postRepo.Update(c.Context(), post); updateErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(updateErr))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post_id":   post.ID,
		"image_url": post.ImageURL,
		"hash":      img.Hash,
		"width":     img.Width,
		"height":    img.Height,
		"crop_mode": img.CropMode,
		"variants":  s.imageService.BuildVariantsMap(img.Hash, img.Variants),
	})
}

// ServeImage handles GET /media/i/:hash/:file. Files are content-addressed
// so they never change under a given URL and can be cached indefinitely.
func (s *Server) ServeImage(c *fiber.Ctx) error {
	hash := c.Params("hash")
	file := c.Params("file")

	_, path, err := s.imageService.ResolveForServing(c.Context(), hash, file)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.SendFile(path)
}
