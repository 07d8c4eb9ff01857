package vulkan

/**
 * @brief Max number of frames recorded while the GPU still reads earlier
 * ones. Each owns a slot in the uniform buffer.
 */
const VULKAN_MAX_FRAMES_IN_FLIGHT = 3

/**
 * @brief The largest minUniformBufferOffsetAlignment Vulkan allows. Slots
 * aligned to it are valid on every device.
 */
const VULKAN_UNIFORM_BUFFER_ALIGNMENT uint64 = 256
