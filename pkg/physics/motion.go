package physics

// GravityAcceleration returns the acceleration a body of the given mass gets
// from gravity. The force is mass·g, so the mass divides back out.
func GravityAcceleration(gravity Vector2D, mass float64) Vector2D {
	force := gravity.Scale(mass)
	return force.Scale(1 / mass)
}

// IntegrateVelocity advances velocity by acceleration over deltaTime
func IntegrateVelocity(velocity, acceleration Vector2D, deltaTime float64) Vector2D {
	return velocity.Add(acceleration.Scale(deltaTime))
}

// Displacement converts a velocity in metres per second into the pixel offset
// covered in deltaTime.
func Displacement(velocity Vector2D, deltaTime, pixelsPerMetre float64) Vector2D {
	return velocity.Scale(deltaTime * pixelsPerMetre)
}

// VelocityFromDelta converts a pixel offset covered in deltaTime into metres per second
func VelocityFromDelta(delta Vector2D, deltaTime, pixelsPerMetre float64) Vector2D {
	if deltaTime <= 0 || pixelsPerMetre <= 0 {
		return Vector2D{}
	}
	return delta.Scale(1 / (deltaTime * pixelsPerMetre))
}
