package ringct

import "github.com/bwesterb/go-ristretto"

// ComputeKeyImage returns I = x * Hp(x * G).
func ComputeKeyImage(secret *ristretto.Scalar) *ristretto.Point {
	return keyImage(secret, PublicKey(secret))
}

func keyImage(secret *ristretto.Scalar, public *ristretto.Point) *ristretto.Point {
	var image ristretto.Point
	return image.ScalarMult(hashToPoint(public), secret)
}

// KeyImageSet is the ledger's record of spent key images.
type KeyImageSet interface {
	Contains(image *ristretto.Point) bool
	// Insert adds every image or none of them, returning ErrDoubleSpend when
	// any image is already present.
	Insert(images ...*ristretto.Point) error
}
